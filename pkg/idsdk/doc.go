/*
Package idsdk is the client for the identity service REST API.

# Overview

Every call is authenticated with the tenant API key (HTTP Basic). Resources
are addressed by href and keep a reference to the Client that loaded them, so
follow-up calls read naturally:

	client := idsdk.NewClient("https://id.example.com", idsdk.Credentials{ID: id, Secret: secret})

	app, err := client.GetApplication(ctx, appHref)

	// Look up an API key and its owning account in one request
	key, err := app.GetAPIKey(ctx, keyID, idsdk.WithAccount())

	// Username/password login
	result, err := app.AuthenticateAccount(ctx, idsdk.UsernamePasswordRequest{
		Username: "alice",
		Password: "s3cret!",
	})

# Password Reset

A reset is a two step flow. The first step creates a token and emails it;
the second consumes it:

	tok, err := app.SendPasswordResetEmail(ctx, "alice@example.com", nil)

	acct, err := app.VerifyPasswordResetToken(ctx, token)
	acct, err  = app.ResetPassword(ctx, token, "n3w-s3cret!")

# Errors

Any non-success reply is returned as a *ResourceError carrying the HTTP
status and the service error code. IsNotFound is a shortcut for the common
404 check.
*/
package idsdk
