package indexclient

import (
	"errors"
	"testing"
	"time"
)

// TestVersionSupported tests the minimum version gate.
func TestVersionSupported(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		version   Version
		supported bool
	}{
		{"well below minimum", Version{1, 0, 0}, false},
		{"minor below minimum", Version{1, 3, 9}, false},
		{"revision below minimum", Version{1, 4, 0}, false},
		{"exact minimum", Version{1, 4, 1}, true},
		{"revision above minimum", Version{1, 4, 2}, true},
		{"minor above minimum", Version{1, 5, 0}, true},
		{"next major", Version{2, 0, 0}, true},
		{"zero version", Version{0, 0, 0}, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.version.Supported(); got != tt.supported {
				t.Errorf("Version %s Supported() = %v, want %v", tt.version, got, tt.supported)
			}
		})
	}
}

// versionStubClient reports a fixed version and error code. All other
// Client methods are inert.
type versionStubClient struct {
	version  Version
	lastErr  ErrorCode
	instance string
}

func (s *versionStubClient) SetSearch(string)                           {}
func (s *versionStubClient) SetRequestFlags(RequestFlag)                {}
func (s *versionStubClient) SetSort(SortKey)                            {}
func (s *versionStubClient) SetMatchCase(bool)                          {}
func (s *versionStubClient) SetMatchPath(bool)                          {}
func (s *versionStubClient) SetMatchWholeWord(bool)                     {}
func (s *versionStubClient) SetMatchRegex(bool)                         {}
func (s *versionStubClient) SetMax(int)                                 {}
func (s *versionStubClient) SetOffset(int)                              {}
func (s *versionStubClient) Query(bool) bool                            { return false }
func (s *versionStubClient) GetNumResults() int                         { return 0 }
func (s *versionStubClient) GetTotalResults() int                       { return 0 }
func (s *versionStubClient) GetResultFullPath(int) string               { return "" }
func (s *versionStubClient) GetResultHighlightedPath(int) string        { return "" }
func (s *versionStubClient) GetResultHighlightedFileName(int) string    { return "" }
func (s *versionStubClient) IsFileResult(int) bool                      { return false }
func (s *versionStubClient) GetResultSize(int) int64                    { return 0 }
func (s *versionStubClient) GetResultDateModified(int) time.Time        { return time.Time{} }
func (s *versionStubClient) GetLastError() ErrorCode                    { return s.lastErr }
func (s *versionStubClient) GetMajorVersion() int                       { return s.version.Major }
func (s *versionStubClient) GetMinorVersion() int                       { return s.version.Minor }
func (s *versionStubClient) GetRevision() int                           { return s.version.Revision }
func (s *versionStubClient) IncrementRunCount(string) bool              { return false }
func (s *versionStubClient) IsFastSort(SortKey) bool                    { return false }
func (s *versionStubClient) SetInstanceName(name string)                { s.instance = name }

// TestCheckService tests initialization validation against stub services.
func TestCheckService(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		client  *versionStubClient
		wantErr error
	}{
		{
			name:    "supported version",
			client:  &versionStubClient{version: Version{1, 4, 1}},
			wantErr: nil,
		},
		{
			name:    "newer major",
			client:  &versionStubClient{version: Version{2, 0, 0}},
			wantErr: nil,
		},
		{
			name:    "too old",
			client:  &versionStubClient{version: Version{1, 4, 0}},
			wantErr: ErrVersionUnsupported,
		},
		{
			name:    "unreachable service",
			client:  &versionStubClient{version: Version{}, lastErr: CodeIPCUnavailable},
			wantErr: ErrServiceUnavailable,
		},
		{
			name:    "zero version without error code",
			client:  &versionStubClient{version: Version{}},
			wantErr: ErrVersionUnsupported,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := CheckService(tt.client)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("CheckService() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CheckService() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
