// Package registry reads exchanges, networks and memberships from a
// PeeringDB-compatible API.
//
// Requests go to {base_url}/{endpoint} with an "Authorization: Api-Key <key>"
// header. Responses are {"data": [...]} documents decoded into Record values.
//
// Fetch pages with limit/skip and stops at the first empty page. Any non-2xx
// status or undecodable body aborts the fetch with ErrFetch; pages already
// handed to the Processor are not rolled back.
package registry
