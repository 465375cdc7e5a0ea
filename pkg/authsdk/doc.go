// Package authsdk is a Go client for the commerce authentication service.
//
// The SDKClient covers the unauthenticated surface (registration, login,
// OTP verification, password recovery). A successful login returns a
// Session, which carries the token pair and retries once with a refreshed
// access token when a request comes back 401.
//
// Basic usage:
//
//	client := authsdk.NewSDKClient("https://auth.example.com")
//
//	err := client.Register(ctx, authsdk.RegisterRequest{
//		Username:        "alice",
//		Email:           "alice@example.com",
//		Password:        "secret",
//		ConfirmPassword: "secret",
//	})
//
//	// ... user confirms the emailed code ...
//	err = client.VerifyOtp(ctx, "alice@example.com", "042137")
//
//	session, err := client.Login(ctx, "alice", "secret")
//	checkout, err := session.CheckoutURL(ctx, "payment-123", 100000)
//
// Server errors unmarshal into *APIError, so callers can branch on the
// machine-readable message:
//
//	if authsdk.IsError(err, "invalid_credentials") {
//		// bad username or password
//	}
package authsdk
