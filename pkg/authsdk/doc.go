/*
Package authsdk is the client SDK and wire contract of the ggj-auth service.

Other platform functions use it to sign users in and to check bearer tokens
without holding the signing secret themselves.

	client := authsdk.NewSDKClient("https://auth.example.com")

	session, err := client.Login(ctx, "ada@example.com", "Passw0rd!")
	if err != nil {
		var apiErr *authsdk.APIError
		if errors.As(err, &apiErr) && apiErr.Code == authsdk.ErrorCodeInvalidCredentials {
			// wrong email or password
		}
		return err
	}

	me, err := session.Me(ctx)

	res, err := client.Verify(ctx, session.AccessToken())
	if !res.Valid {
		fmt.Println("rejected:", res.Error)
	}

# Sessions

A Session wraps one access token. Tokens are not refreshed: once a token
expires the caller signs in again. Sessions are safe for concurrent use.

# Errors

Every non-2xx response is returned as an *APIError carrying the HTTP status
and the error code from the JSON body. The same catalogue is used by the
server to write its responses.
*/
package authsdk
