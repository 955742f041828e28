package sportivity

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const (
	cfNetworkVersion = "3826.600.41"
	sentryPublicKey  = "90a27f781c0bb6fd105c35717764a55b"
	sentryAppRelease = "2.0.43"
)

var (
	traceOnce sync.Once
	traceID   string
	spanID    string
)

// sessionTrace returns the trace and span ids shared by every request of
// this process.
func sessionTrace() (string, string) {
	traceOnce.Do(func() {
		traceID = strings.ReplaceAll(uuid.NewString(), "-", "")
		spanID = strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	})
	return traceID, spanID
}

// Identity describes the app build the client presents itself as.
type Identity struct {
	IOSVersion string
	AppVersion string
	BundleID   string
}

func darwinVersion(ios string) string {
	if strings.HasPrefix(ios, "17.") {
		return "23.5.0"
	}
	return "24.6.0"
}

func (id Identity) UserAgent() string {
	return fmt.Sprintf("Sportivity/%s CFNetwork/%s Darwin/%s", id.AppVersion, cfNetworkVersion, darwinVersion(id.IOSVersion))
}

func (id Identity) apply(h http.Header) {
	trace, span := sessionTrace()
	h.Set("Accept", "application/json, text/plain, */*")
	h.Set("Content-Type", "application/json")
	h.Set("bundleidentifier", id.BundleID)
	h.Set("User-Agent", id.UserAgent())
	h.Set("Accept-Language", "nl-NL,nl;q=0.9")
	h.Set("sentry-trace", fmt.Sprintf("%s-%s-0", trace, span))
	h.Set("baggage", strings.Join([]string{
		"sentry-environment=production",
		"sentry-public_key=" + sentryPublicKey,
		fmt.Sprintf("sentry-release=%s%%40%s%%2B%s", id.BundleID, sentryAppRelease, id.AppVersion),
		"sentry-trace_id=" + trace,
	}, ","))
}
