// Package interfaces documents the core abstractions used throughout the application.
//
// This package consolidates interface documentation to help code agents understand
// extension points and how to implement new functionality.
//
// # Interface Categories
//
// The application uses several categories of interfaces:
//
// ## Data Access Interfaces
//
//   - FavoriteStore: Favorite rows in SQLite (internal/books/repository.go)
//   - FavoritesStore: Favorite endpoints (internal/http/favorites.go)
//   - BookSearcher: Search and description endpoints (internal/http/books.go)
//   - booklist.Books / bookdetail.Books: What the screen models need (internal/booklist/model.go, internal/bookdetail/model.go)
//
// ## External Service Interfaces
//
//   - RemoteSource: OpenLibrary search and works API (internal/books/repository.go)
//   - CoverSource / CoverFetcher: Cover image cache (internal/http/covers.go, internal/tasks/cover.go)
//
// ## Background Work Interfaces
//
//   - FavoriteHook: Reacts to favorite changes (internal/books/repository.go)
//   - ProgressReporter: Favorites refresh progress (internal/tasks/refresh.go)
//   - RefreshEnqueuer: Queues a favorites refresh (internal/scheduler/refresh.go)
//   - TaskQueue: Task status and manual refresh (internal/http/tasks.go)
//
// ## Session Interfaces
//
//   - sessions.Session: A screen model held by a registry (internal/sessions/registry.go)
//   - SearchSessionIDStore: Remembers a browser's search session (internal/http/search_sessions.go)
//
// # Adding a New Screen
//
// A screen is a model that reduces intents into states and publishes every
// state to its subscribers:
//
//  1. Create a package next to internal/booklist with a State, the intents it
//     accepts and a Model implementing LastActive and Close.
//
//  2. Keep a registry for it in internal/entrypoint:
//
//     registry := sessions.NewRegistry[*myscreen.Model]("myscreen", sessionsCfg)
//
//  3. Add a controller in internal/http that creates sessions, accepts intents
//     and streams states through streamStates.
//
//  4. Add a compile-time check to checks.go:
//
//     var _ sessions.Session = (*myscreen.Model)(nil)
//
// # Adding a New Background Task
//
//  1. Define the task type with a Config method in internal/tasks.
//
//  2. Write a processor taking the narrowest interfaces it needs and a
//     NewXxxQueue constructor.
//
//  3. Register the queue in entrypoint.Run before the client starts.
//
// # Testing with Interfaces
//
// Controllers take interfaces, so tests can pass fakes:
//
//	type fakeTaskQueue struct {
//	    status backlite.TaskStatus
//	}
//
//	func (f *fakeTaskQueue) Status(ctx context.Context, id string) (backlite.TaskStatus, error) {
//	    return f.status, nil
//	}
package interfaces
