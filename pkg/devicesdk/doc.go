/*
Package devicesdk provides a client SDK for the Tether device authority
service.

# Overview

Tether binds each account to exactly one device and allows at most one live
session per account. The SDK pairs an HTTP client with a local device
binding store (pkg/devicebind) so that every credential-bearing request
carries a fresh, time-stamped device hash derived from this machine's
hardware identity.

# SDKClient vs Session

The package is organized around two main types:

  - SDKClient: unauthenticated operations (register, login, reactivate,
    health probes) and the entry point for creating Sessions
  - Session: authenticated operations against the issued session token

Create a client with a binding store rooted somewhere writable:

	binding := devicebind.NewStore(cfgDir, hwid.NewCollector(), logger)
	client := devicesdk.NewSDKClient("https://auth.example.com", binding)

	session, err := client.Login(ctx, "alice", "hunter22")

# Session Exclusivity

A login while the account is active on another device fails with the
account_active_on_other_device error code. The supported recovery is to
evict the other device from an existing session on this device, or to ask
the user to log out there:

	session, err := client.Login(ctx, username, password)
	var authErr *devicesdk.AuthError
	if errors.As(err, &authErr) && authErr.Code == devicesdk.ErrorCodeActiveOnOtherDevice {
		// prompt the user, then from a session on this device:
		// session.LogoutOtherDevices(ctx)
	}

# No Token Refresh

Session tokens are not refreshed. When a token expires, Session methods
return ErrTokenInvalid and the caller logs in again, which re-runs the
device binding check end to end.

# Thread Safety

Sessions are safe for concurrent use; token state is guarded by a
read/write lock.
*/
package devicesdk
