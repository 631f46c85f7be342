package editor

import (
	"gitea.jw6.us/james/vcardedit/internal/store"
	"gitea.jw6.us/james/vcardedit/internal/vcard"
)

// Field is one property row of an entity.
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Valid bool   `json:"valid"`
}

// Entity is the editable view of one contact.
type Entity struct {
	Index    int      `json:"index"`
	Version  string   `json:"version"`
	Fields   []Field  `json:"fields"`
	Rejected []string `json:"rejected,omitempty"`
	Valid    bool     `json:"valid"`
}

// Snapshot is a point-in-time view of a session's document.
type Snapshot struct {
	Loaded     bool     `json:"loaded"`
	Generation uint64   `json:"generation"`
	Valid      bool     `json:"valid"`
	Entities   []Entity `json:"entities"`
}

func newSnapshot(sess *store.Session) *Snapshot {
	snap := &Snapshot{Generation: sess.Generation, Entities: []Entity{}}
	if sess.Document == nil {
		return snap
	}
	snap.Loaded = true
	snap.Valid = true
	for _, e := range sess.Document.Entities {
		view := Entity{Index: e.Index, Version: e.Version, Fields: []Field{}, Valid: true}
		for _, p := range e.Properties.Pairs() {
			ok := vcard.Validate(p.Key, p.Value)
			view.Fields = append(view.Fields, Field{Key: p.Key, Value: p.Value, Valid: ok})
			if !ok {
				view.Valid = false
			}
		}
		for _, ke := range e.Rejected {
			view.Rejected = append(view.Rejected, ke.Key)
		}
		if !view.Valid {
			snap.Valid = false
		}
		snap.Entities = append(snap.Entities, view)
	}
	return snap
}
