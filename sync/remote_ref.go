package sync

import (
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
)

// Recruit CRM has keyed records by numeric id and, in later API versions, by slug.
// Responses may also nest the record under "data".
var (
	remoteRefIDPaths   = []string{"data.id", "id"}
	remoteRefSlugPaths = []string{"data.slug", "slug"}
)

// RemoteRef is a handle to a Recruit CRM record. It is resolved when
// at least one of ID and Slug is set.
type RemoteRef struct {
	ID   int64
	Slug string
}

func (r RemoteRef) Resolved() bool {
	return r.ID != 0 || r.Slug != ""
}

func (r RemoteRef) String() string {
	switch {
	case r.ID != 0 && r.Slug != "":
		return fmt.Sprintf("id=%d slug=%s", r.ID, r.Slug)
	case r.ID != 0:
		return fmt.Sprintf("id=%d", r.ID)
	case r.Slug != "":
		return fmt.Sprintf("slug=%s", r.Slug)
	}
	return "unresolved"
}

// Field returns the payload key and value linking to this record from another
// entity, e.g. ("company_slug", "abc") or ("company_id", 42).
// identifier picks the preferred kind, the other kind is used when it is absent.
func (r RemoteRef) Field(entity string, identifier string) (string, interface{}) {
	slug := func() (string, interface{}) { return entity + "_slug", r.Slug }
	id := func() (string, interface{}) { return entity + "_id", r.ID }
	if identifier == IdentifierID {
		if r.ID != 0 {
			return id()
		}
		if r.Slug != "" {
			return slug()
		}
		return "", nil
	}
	if r.Slug != "" {
		return slug()
	}
	if r.ID != 0 {
		return id()
	}
	return "", nil
}

// ExtractRemoteRef reads whichever identifier shape is present in a record or response body.
// A non numeric string found under an id path is kept as the slug.
func ExtractRemoteRef(record gjson.Result) RemoteRef {
	var result RemoteRef
	for _, p := range remoteRefIDPaths {
		v := record.Get(p)
		if !v.Exists() {
			continue
		}
		switch v.Type {
		case gjson.Number:
			result.ID = v.Int()
		case gjson.String:
			if n, err := strconv.ParseInt(v.String(), 10, 64); err == nil {
				result.ID = n
			} else if result.Slug == "" {
				result.Slug = v.String()
			}
		}
		if result.ID != 0 {
			break
		}
	}
	for _, p := range remoteRefSlugPaths {
		v := record.Get(p)
		if !v.Exists() {
			continue
		}
		switch v.Type {
		case gjson.String:
			result.Slug = v.String()
		case gjson.Number:
			result.Slug = v.Raw
		}
		if result.Slug != "" {
			break
		}
	}
	return result
}
