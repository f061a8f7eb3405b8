package indexclient

import (
	"fmt"

	"filedex/internal/logging"
)

// Version identifies a query service release.
type Version struct {
	Major    int
	Minor    int
	Revision int
}

// MinimumVersion is the oldest service release the client supports.
var MinimumVersion = Version{Major: 1, Minor: 4, Revision: 1}

// String returns the dotted version string.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Revision)
}

// Supported reports whether the version meets the minimum supported
// release: major > 1, or 1.x with minor > 4, or 1.4.x with revision >= 1.
func (v Version) Supported() bool {
	if v.Major > MinimumVersion.Major {
		return true
	}
	if v.Major == MinimumVersion.Major {
		if v.Minor > MinimumVersion.Minor {
			return true
		}
		if v.Minor == MinimumVersion.Minor && v.Revision >= MinimumVersion.Revision {
			return true
		}
	}
	return false
}

// ServiceVersion reads the version the client reports.
func ServiceVersion(c Client) Version {
	return Version{
		Major:    c.GetMajorVersion(),
		Minor:    c.GetMinorVersion(),
		Revision: c.GetRevision(),
	}
}

// CheckService validates that the service is reachable and recent enough.
// A zero version with a pending error code means the service never
// answered; that case reports the service's own error, not a version
// mismatch.
func CheckService(c Client) error {
	v := ServiceVersion(c)

	if (v == Version{}) {
		if code := c.GetLastError(); code != CodeOK {
			logging.Error("Query service unreachable: %s", code)
			return fmt.Errorf("%w: %s", ErrServiceUnavailable, code)
		}
	}

	if !v.Supported() {
		logging.Error("Query service version %s is below the minimum supported %s", v, MinimumVersion)
		return fmt.Errorf("%w: %s (minimum %s)", ErrVersionUnsupported, v, MinimumVersion)
	}

	logging.Info("Query service version %s", v)
	return nil
}
