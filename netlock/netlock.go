// Package netlock provides the named mutex that serializes frontier claims
// across crawler machines. A Server hosts the locks over TCP, Client
// implements ossearch.Locker against it, and Local is the in-process
// variant for single-machine deployments.
//
// The wire protocol is line-oriented. The server opens with a base64
// challenge; the client answers with the hex HMAC-SHA256 of the challenge
// under the shared authkey. After "OK" the client issues ACQUIRE and
// RELEASE commands with a lock name. A lock held by a connection is
// released when that connection drops, so a crashed claimer can never
// wedge the swarm.
package netlock

// DefaultPort is the TCP port the lock server listens on.
const DefaultPort = 4643

// DefaultAuthKey is the shared secret used when none is configured.
const DefaultAuthKey = "a"

// FrontierLock is the lock name serializing frontier claims.
const FrontierLock = "frontier"

const (
	cmdAcquire = "ACQUIRE"
	cmdRelease = "RELEASE"

	replyOK       = "OK"
	replyGranted  = "GRANTED"
	replyReleased = "RELEASED"
	replyErr      = "ERR"
)
