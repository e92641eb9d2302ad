package cache

import (
	"sort"
	"strconv"
	"sync"
)

// ListId is the tag id shared by every list query of a type.
const ListId = "LIST"

// Tag labels cached results and mutation effects. An empty Id on an
// invalidation tag matches every tag of the same Type.
type Tag struct {
	Type string `json:"type"`
	Id   string `json:"id,omitempty"`
}

// ItemTag returns the per-entity tag.
func ItemTag(tagType string, id int64) Tag {
	return Tag{Type: tagType, Id: strconv.FormatInt(id, 10)}
}

// ListTag returns the list tag of a type.
func ListTag(tagType string) Tag {
	return Tag{Type: tagType, Id: ListId}
}

// TypeTag returns the wildcard tag of a type.
func TypeTag(tagType string) Tag {
	return Tag{Type: tagType}
}

// ItemAndList returns the invalidation pair every mutation of one entity uses.
func ItemAndList(tagType string, id int64) []Tag {
	return []Tag{ItemTag(tagType, id), ListTag(tagType)}
}

func (t Tag) String() string {
	if t.Id == "" {
		return t.Type + ":*"
	}
	return t.Type + ":" + t.Id
}

// Matches reports whether invalidating t affects a result tagged with other.
func (t Tag) Matches(other Tag) bool {
	return t.Type == other.Type && (t.Id == "" || t.Id == other.Id)
}

// matchesAny reports whether invalidating any of invalidated affects a result
// tagged with any of provided.
func matchesAny(invalidated, provided []Tag) bool {
	for _, inv := range invalidated {
		for _, tag := range provided {
			if inv.Matches(tag) {
				return true
			}
		}
	}
	return false
}

// Registry maps tags to the cache keys that provide them.
type Registry struct {
	mutex  sync.RWMutex
	byTag  map[Tag]map[string]struct{}
	byKey  map[string][]Tag
	byType map[string]map[Tag]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		byTag:  make(map[Tag]map[string]struct{}),
		byKey:  make(map[string][]Tag),
		byType: make(map[string]map[Tag]struct{}),
	}
}

// Register replaces the tags provided by key.
func (r *Registry) Register(key string, tags []Tag) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.unregisterLocked(key)
	if len(tags) == 0 {
		return
	}

	seen := make(map[Tag]struct{}, len(tags))
	for _, tag := range tags {
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}

		keys, ok := r.byTag[tag]
		if !ok {
			keys = make(map[string]struct{})
			r.byTag[tag] = keys
		}
		keys[key] = struct{}{}

		types, ok := r.byType[tag.Type]
		if !ok {
			types = make(map[Tag]struct{})
			r.byType[tag.Type] = types
		}
		types[tag] = struct{}{}

		r.byKey[key] = append(r.byKey[key], tag)
	}
}

// Unregister removes every tag provided by key.
func (r *Registry) Unregister(key string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.unregisterLocked(key)
}

func (r *Registry) unregisterLocked(key string) {
	for _, tag := range r.byKey[key] {
		keys := r.byTag[tag]
		delete(keys, key)
		if len(keys) == 0 {
			delete(r.byTag, tag)
			if types := r.byType[tag.Type]; types != nil {
				delete(types, tag)
				if len(types) == 0 {
					delete(r.byType, tag.Type)
				}
			}
		}
	}
	delete(r.byKey, key)
}

// Match returns the keys affected by invalidating tags, sorted.
func (r *Registry) Match(tags ...Tag) []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	found := make(map[string]struct{})
	for _, tag := range tags {
		if tag.Id != "" {
			for key := range r.byTag[tag] {
				found[key] = struct{}{}
			}
			continue
		}
		for provided := range r.byType[tag.Type] {
			for key := range r.byTag[provided] {
				found[key] = struct{}{}
			}
		}
	}

	keys := make([]string, 0, len(found))
	for key := range found {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Reset drops every registration.
func (r *Registry) Reset() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.byTag = make(map[Tag]map[string]struct{})
	r.byKey = make(map[string][]Tag)
	r.byType = make(map[string]map[Tag]struct{})
}

// Tags returns the tags currently provided by key.
func (r *Registry) Tags(key string) []Tag {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return append([]Tag(nil), r.byKey[key]...)
}

// Len returns the number of keys holding at least one tag.
func (r *Registry) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.byKey)
}
