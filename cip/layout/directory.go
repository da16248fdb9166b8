package layout

import (
	"sort"
	"sync"
)

// Field is one registered entry of a Directory.
type Field struct {
	UUID        string
	DisplayName string
	Name        string
}

// Directory maps field UUIDs to display names and normalized names to UUIDs.
// Entries accumulate for the lifetime of the Directory; registering a UUID
// again replaces its display name. The zero value is ready to use and a
// Directory is safe for concurrent use.
type Directory struct {
	mu           sync.RWMutex
	displayNames map[string]string // uuid -> display name
	uuids        map[string]string // normalized name -> uuid
}

// NewDirectory returns an empty Directory.
func NewDirectory() *Directory {
	return &Directory{}
}

// Register upserts a field. The last registration wins for both the UUID and
// the normalized name derived from displayName. A display name that
// normalizes to "" is kept for the UUID but gets no name.
func (d *Directory) Register(uuid, displayName string) {
	name := NormalizeDisplayName(displayName)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.displayNames == nil {
		d.displayNames = make(map[string]string)
		d.uuids = make(map[string]string)
	}
	if prev, ok := d.displayNames[uuid]; ok {
		if old := NormalizeDisplayName(prev); old != name && d.uuids[old] == uuid {
			delete(d.uuids, old)
		}
	}
	d.displayNames[uuid] = displayName
	if name != "" {
		d.uuids[name] = uuid
	}
}

// UUIDToDisplayName returns the display name registered for uuid.
func (d *Directory) UUIDToDisplayName(uuid string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	displayName, ok := d.displayNames[uuid]
	if !ok {
		return "", notFound("uuid", uuid)
	}
	return displayName, nil
}

// UUIDToName returns the normalized name of the field registered for uuid.
func (d *Directory) UUIDToName(uuid string) (string, error) {
	displayName, err := d.UUIDToDisplayName(uuid)
	if err != nil {
		return "", err
	}
	return NormalizeDisplayName(displayName), nil
}

// fieldName returns the name a record key uuid is rewritten to. It reports
// false when uuid is unknown, has no name, or its name now belongs to a later
// registered UUID, so that rewriting and NameToUUID stay inverses.
func (d *Directory) fieldName(uuid string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	displayName, ok := d.displayNames[uuid]
	if !ok {
		return "", false
	}
	name := NormalizeDisplayName(displayName)
	if name == "" || d.uuids[name] != uuid {
		return "", false
	}
	return name, true
}

// NameToUUID returns the UUID registered under a normalized name.
func (d *Directory) NameToUUID(name string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	uuid, ok := d.uuids[name]
	if !ok {
		return "", notFound("name", name)
	}
	return uuid, nil
}

// NameToDisplayName returns the display name of the field registered under a
// normalized name.
func (d *Directory) NameToDisplayName(name string) (string, error) {
	uuid, err := d.NameToUUID(name)
	if err != nil {
		return "", err
	}
	return d.UUIDToDisplayName(uuid)
}

// DisplayNameToUUID normalizes displayName and resolves it to a UUID.
func (d *Directory) DisplayNameToUUID(displayName string) (string, error) {
	uuid, err := d.NameToUUID(NormalizeDisplayName(displayName))
	if err != nil {
		return "", notFound("display name", displayName)
	}
	return uuid, nil
}

// Len reports how many UUIDs are registered.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.displayNames)
}

// Fields returns a snapshot of the registered fields ordered by name.
func (d *Directory) Fields() []Field {
	d.mu.RLock()
	fields := make([]Field, 0, len(d.displayNames))
	for uuid, displayName := range d.displayNames {
		fields = append(fields, Field{
			UUID:        uuid,
			DisplayName: displayName,
			Name:        NormalizeDisplayName(displayName),
		})
	}
	d.mu.RUnlock()

	sort.Slice(fields, func(i, j int) bool {
		if fields[i].Name != fields[j].Name {
			return fields[i].Name < fields[j].Name
		}
		return fields[i].UUID < fields[j].UUID
	})
	return fields
}

// RegisterLayout registers every field descriptor of a decoded getlayout
// response ({"fields": [{"id": "{...}", "name": "..."}]}) and returns how many
// were registered. Descriptors without a UUID-shaped id or a name are skipped.
func (d *Directory) RegisterLayout(tree any) int {
	root, ok := tree.(map[string]any)
	if !ok {
		return 0
	}
	descriptors, ok := root["fields"].([]any)
	if !ok {
		return 0
	}
	count := 0
	for _, raw := range descriptors {
		desc, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		id, _ := desc["id"].(string)
		name, _ := desc["name"].(string)
		if !IsFieldUUID(id) || name == "" {
			continue
		}
		d.Register(id, name)
		count++
	}
	return count
}
