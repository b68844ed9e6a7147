// Package wire provides dependency injection for the testdeck application.
// It creates singleton services with lazy initialization.
package wire

import (
	"log"
	"sync"

	"github.com/example/testdeck/internal/adapters/sqlite"
	"github.com/example/testdeck/internal/app"
	"github.com/example/testdeck/internal/db"
	"github.com/example/testdeck/internal/ports/primary"
	"github.com/example/testdeck/internal/ports/secondary"
)

var (
	store           *sqlite.Store
	folderService   primary.FolderService
	testCaseService primary.TestCaseService
	testRunService  primary.TestRunService
	undoService     primary.UndoService
	writeLogService primary.WriteLogService
	once            sync.Once
)

// FolderService returns the singleton FolderService instance.
func FolderService() primary.FolderService {
	once.Do(initServices)
	return folderService
}

// TestCaseService returns the singleton TestCaseService instance.
func TestCaseService() primary.TestCaseService {
	once.Do(initServices)
	return testCaseService
}

// TestRunService returns the singleton TestRunService instance.
func TestRunService() primary.TestRunService {
	once.Do(initServices)
	return testRunService
}

// UndoService returns the singleton UndoService instance.
func UndoService() primary.UndoService {
	once.Do(initServices)
	return undoService
}

// WriteLogService returns the singleton WriteLogService instance.
func WriteLogService() primary.WriteLogService {
	once.Do(initServices)
	return writeLogService
}

// Organizations returns the organization repository for tenant bootstrap.
func Organizations() secondary.OrganizationRepository {
	once.Do(initServices)
	return store.Repos().Organizations
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	database, err := db.GetDB()
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	store = sqlite.NewStore(database)
	repos := store.Repos()

	folderService = app.NewFolderService(store, repos)
	testCaseService = app.NewTestCaseService(store, repos)
	testRunService = app.NewTestRunService(store, repos)
	undoService = app.NewUndoService(store, repos)
	writeLogService = app.NewWriteLogService(store, repos)
}
