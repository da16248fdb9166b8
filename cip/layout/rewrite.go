package layout

// Item is a single metadata record keyed by field UUIDs or names.
type Item = map[string]any

// RewriteItem replaces every UUID-shaped key of item that resolves in d with
// the field's normalized name, keeping the value. Keys that do not resolve
// stay as they are, as do keys whose name is empty, owned by another UUID or
// already present in item. It returns the number of keys rewritten.
func (d *Directory) RewriteItem(item Item) int {
	if len(item) == 0 {
		return 0
	}
	keys := make([]string, 0, len(item))
	for key := range item {
		if IsFieldUUID(key) {
			keys = append(keys, key)
		}
	}
	rewritten := 0
	for _, key := range keys {
		name, ok := d.fieldName(key)
		if !ok {
			continue
		}
		if _, taken := item[name]; taken {
			continue
		}
		item[name] = item[key]
		delete(item, key)
		rewritten++
	}
	return rewritten
}

// RewriteItems rewrites the records of a decoded response in place. Records
// are taken from an "items" array when present; otherwise the response
// object itself is treated as a record.
func (d *Directory) RewriteItems(tree any) int {
	root, ok := tree.(map[string]any)
	if !ok {
		return 0
	}
	list, ok := root["items"].([]any)
	if !ok {
		return d.RewriteItem(root)
	}
	total := 0
	for _, raw := range list {
		if item, ok := raw.(map[string]any); ok {
			total += d.RewriteItem(item)
		}
	}
	return total
}

// Unresolved returns the UUID-shaped keys of the response records that d
// cannot resolve.
func (d *Directory) Unresolved(tree any) []string {
	root, ok := tree.(map[string]any)
	if !ok {
		return nil
	}
	items := []any{root}
	if list, ok := root["items"].([]any); ok {
		items = list
	}
	seen := make(map[string]struct{})
	var missing []string
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		for key := range item {
			if !IsFieldUUID(key) {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			if _, err := d.UUIDToDisplayName(key); err != nil {
				missing = append(missing, key)
			}
		}
	}
	return missing
}

// EncodeItem returns a copy of item with field names translated back to
// UUIDs, for sending records to the service. The "id" key and keys that are
// already UUIDs are copied unchanged; any other key must be a registered
// name.
func (d *Directory) EncodeItem(item Item) (Item, error) {
	out := make(Item, len(item))
	for key, value := range item {
		if key == "id" || IsFieldUUID(key) {
			out[key] = value
			continue
		}
		uuid, err := d.NameToUUID(key)
		if err != nil {
			return nil, err
		}
		out[uuid] = value
	}
	return out, nil
}
