// Package hme drives the iCloud Hide My Email web service: generating,
// reserving, listing and managing anonymous forwarding addresses.
//
// A Manager can only be built from a validated *icloud.Session:
//
//	client, _ := icloud.New(cookies)
//	session, err := client.Validate(ctx)
//	if err != nil { ... }
//	addr, err := hme.NewManager(session).GenerateAndClaim(ctx, "shopping", "")
//
// None of the calls are retried.
package hme
