// Package client contains the remote side of the sync client.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract for the remote content catalog (see the
//     Client interface): ListInventory, FetchPayload and Ping.
//  2. A concrete REST implementation (see HTTPClient) speaking the
//     PostgREST dialect: inventory and bulk listings under /rest/v1 and the
//     per-item delivery functions under /functions/v1. The API key is sent
//     both as "apikey" and as a bearer token.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) that opens the
//     SQLite database and applies the embedded goose migrations.
//
// # Error Handling
//
// Inventory failures wrap ErrUnavailable. Payload failures wrap
// common.ErrItemFetchFailed after the bulk fallback has been tried as well.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. Every request is bounded by the
// configured timeout in addition to the caller's context.
//
// See Also
//
//   - Interface:  Client
//   - REST impl:  HTTPClient, Options, Table
//   - DB helpers: InitDatabase, RunMigrations
package client
