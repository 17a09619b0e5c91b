// Package auth resolves who is making a request and protects cookie-based
// clients.
//
// There are no accounts. A user is an opaque identity token:
//   - API clients send it in the X-User-ID header.
//   - Browsers get a uuid issued on first contact, persisted in an scs session
//     backed by the sqlite database.
//
// # Configuration
//
//	SESSION_SECRET=<any string>   # CSRF key material, auto-generated if empty
//	SESSION_LIFETIME=720h         # Cookie and session lifetime
//	SESSION_SECURE_COOKIES=true   # HTTPS-only cookies
//	SESSION_CSRF_ENABLED=true     # Require X-CSRF-Token on unsafe cookie requests
//
// # Usage
//
//	sm, _ := auth.NewSessionManager(sqlDB, cfg.Session)
//	router.Use(sm.SessionLoadSave(), auth.IdentityMiddleware(sm, log))
//
// Extract the identity in handlers:
//
//	userID := auth.GetUserID(c)
package auth
