package store

import (
	"context"
	"encoding/json"
	"strings"
)

// Profile is set once at registration and never mutated afterwards.
type Profile struct {
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	Grade        string `json:"grade"`
	SchoolName   string `json:"schoolName"`
	CountryCode  string `json:"countryCode"`
	MobileNumber string `json:"mobileNumber"`
}

// Progress is the mutable per-student course state. It is always written as a
// whole object into the "progress" field of the record.
type Progress struct {
	CompletedModules      []string       `json:"completedModules"`
	CompletedSimulations  []string       `json:"completedSimulations"`
	ModuleScores          map[string]int `json:"moduleScores"`
	CertificateDownloaded bool           `json:"certificateDownloaded"`
	AdminFeedback         string         `json:"adminFeedback"`
}

// Feedback is the single, write-once course rating a student may submit.
type Feedback struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
	Date    string `json:"date"` // ISO-8601
}

// UserRecord is the full persisted document for one student, keyed by
// normalized email.
type UserRecord struct {
	Profile          Profile   `json:"profile"`
	RegistrationDate string    `json:"registrationDate"` // ISO-8601
	Progress         Progress  `json:"progress"`
	Feedback         *Feedback `json:"feedback,omitempty"`
}

// Entry pairs a record with its store key for collection-level reads.
type Entry struct {
	Key    string
	Record UserRecord
}

// RecordStore is the uniform contract over the two backends (Postgres in
// online mode, SQLite otherwise). The backend is chosen once at startup and
// never switched at runtime.
type RecordStore interface {
	// Get is a point lookup; absence is reported via the bool, not an error.
	Get(ctx context.Context, key string) (UserRecord, bool, error)

	// Put creates or merges the full record at key (upsert, shallow merge at
	// the top level of the document).
	Put(ctx context.Context, key string, rec UserRecord) error

	// MergeField merges partial (a JSON object) one level deep into the named
	// top-level field, so independent writers of "progress" and "feedback"
	// do not clobber each other.
	MergeField(ctx context.Context, key, field string, partial any) error

	// SubscribeAll invokes cb with the full record list once immediately and
	// again after every collection change until the returned cancel func is
	// called.
	SubscribeAll(cb func([]Entry)) (func(), error)

	// Online reports whether this store is backed by the remote database.
	Online() bool

	Close() error
}

// NormalizeKey canonicalizes an email into a store key.
func NormalizeKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

/* ---- JSON document helpers shared by both backends ---- */

func recordToDoc(rec UserRecord) (map[string]any, error) {
	buf, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(buf, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func docToRecord(doc map[string]any) (UserRecord, error) {
	buf, err := json.Marshal(doc)
	if err != nil {
		return UserRecord{}, err
	}
	var rec UserRecord
	if err := json.Unmarshal(buf, &rec); err != nil {
		return UserRecord{}, err
	}
	return rec, nil
}

func toJSONObject(v any) (map[string]any, error) {
	buf, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var obj map[string]any
	if err := json.Unmarshal(buf, &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// mergeTop merges src into dst at the top level (src wins per key).
func mergeTop(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = map[string]any{}
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// mergeIntoField merges partial one level deep into doc[field]. If the field
// is absent or not an object it is replaced wholesale.
func mergeIntoField(doc map[string]any, field string, partial map[string]any) map[string]any {
	if doc == nil {
		doc = map[string]any{}
	}
	cur, _ := doc[field].(map[string]any)
	doc[field] = mergeTop(cur, partial)
	return doc
}
