// Package api is the JSON HTTP surface of techhub.
//
// Routing uses method-qualified ServeMux patterns. Login and registration
// are public; the rest of /api/ sits behind the bearer-token middleware, and
// /api/admin/ additionally behind the admin gate. Handlers stay thin: they
// decode, delegate to the registry, dispatch engine, queue, or content
// service, and map sentinel errors onto status codes in one place.
package api
