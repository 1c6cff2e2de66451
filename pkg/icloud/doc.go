// Package icloud manages an authenticated iCloud web session.
//
// A Client is built from the cookies of a signed-in browser session. It
// assembles the headers iCloud expects from its web frontend, discovers
// the available web services through the setup validation endpoint and
// reconciles the cookies the server rotates on that call. A successful
// validation yields a Session, the only value from which service clients
// such as the hme.Manager can be built.
//
// Cookie values are never logged. Only cookie names appear in log output.
package icloud
