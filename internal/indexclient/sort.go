package indexclient

import "fmt"

// SortKey identifies a result ordering. Keys come in ascending/descending
// pairs: even keys sort ascending, odd keys sort descending.
type SortKey int

const (
	SortNameAscending SortKey = iota
	SortNameDescending
	SortPathAscending
	SortPathDescending
	SortSizeAscending
	SortSizeDescending
	SortExtensionAscending
	SortExtensionDescending
	SortTypeNameAscending
	SortTypeNameDescending
	SortDateCreatedAscending
	SortDateCreatedDescending
	SortDateModifiedAscending
	SortDateModifiedDescending
	SortAttributesAscending
	SortAttributesDescending
	SortFileListFileNameAscending
	SortFileListFileNameDescending
	SortRunCountAscending
	SortRunCountDescending
	SortDateRecentlyChangedAscending
	SortDateRecentlyChangedDescending
	SortDateAccessedAscending
	SortDateAccessedDescending
	SortDateRunAscending
	SortDateRunDescending

	numSortKeys = iota
)

// sortKeyNames maps every sort key to its external name. The table is
// exhaustive over the defined keys; a key outside it is a configuration
// error, not a silent fallthrough.
var sortKeyNames = [numSortKeys]string{
	SortNameAscending:                 "name-ascending",
	SortNameDescending:                "name-descending",
	SortPathAscending:                 "path-ascending",
	SortPathDescending:                "path-descending",
	SortSizeAscending:                 "size-ascending",
	SortSizeDescending:                "size-descending",
	SortExtensionAscending:            "extension-ascending",
	SortExtensionDescending:           "extension-descending",
	SortTypeNameAscending:             "type-name-ascending",
	SortTypeNameDescending:            "type-name-descending",
	SortDateCreatedAscending:          "date-created-ascending",
	SortDateCreatedDescending:         "date-created-descending",
	SortDateModifiedAscending:         "date-modified-ascending",
	SortDateModifiedDescending:        "date-modified-descending",
	SortAttributesAscending:           "attributes-ascending",
	SortAttributesDescending:          "attributes-descending",
	SortFileListFileNameAscending:     "file-list-file-name-ascending",
	SortFileListFileNameDescending:    "file-list-file-name-descending",
	SortRunCountAscending:             "run-count-ascending",
	SortRunCountDescending:            "run-count-descending",
	SortDateRecentlyChangedAscending:  "date-recently-changed-ascending",
	SortDateRecentlyChangedDescending: "date-recently-changed-descending",
	SortDateAccessedAscending:         "date-accessed-ascending",
	SortDateAccessedDescending:        "date-accessed-descending",
	SortDateRunAscending:              "date-run-ascending",
	SortDateRunDescending:             "date-run-descending",
}

// Valid reports whether the key is one of the defined sort keys.
func (k SortKey) Valid() bool {
	return k >= 0 && k < numSortKeys
}

// Ascending reports whether the key sorts ascending. Even keys ascend,
// odd keys descend.
func (k SortKey) Ascending() bool {
	return k%2 == 0
}

// Name returns the external name for the key, or an error for a key
// without a mapping.
func (k SortKey) Name() (string, error) {
	if !k.Valid() {
		return "", fmt.Errorf("no name mapping for sort key %d", int(k))
	}
	return sortKeyNames[k], nil
}

// String implements fmt.Stringer. Unmapped keys render with their
// numeric value so they stand out in logs.
func (k SortKey) String() string {
	name, err := k.Name()
	if err != nil {
		return fmt.Sprintf("sortkey(%d)", int(k))
	}
	return name
}
