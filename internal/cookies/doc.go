// Package cookies reads an iCloud web session out of a browser cookie
// store. Firefox and Chromium SQLite databases and Netscape cookie files
// are supported; only cookies scoped to icloud.com are returned.
//
// Cookie values never leave this package through logs or error messages.
package cookies
