package retail

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Semantic labels of the custom fields the sheet fills.
const (
	LabelTitleShort = "Title Short"
	LabelMetaTitle  = "Meta Title"
)

// FieldMapping maps semantic labels to item attribute names. It is
// immutable once built.
type FieldMapping struct {
	fields map[string]string
}

// NewFieldMapping copies m into a mapping.
func NewFieldMapping(m map[string]string) FieldMapping {
	fields := make(map[string]string, len(m))
	for k, v := range m {
		fields[k] = v
	}
	return FieldMapping{fields: fields}
}

// DefaultFieldMapping is used when discovery finds nothing.
func DefaultFieldMapping() FieldMapping {
	return NewFieldMapping(map[string]string{
		LabelTitleShort: "customField1",
		LabelMetaTitle:  "customField2",
	})
}

// Field returns the attribute for label.
func (m FieldMapping) Field(label string) (string, bool) {
	f, ok := m.fields[label]
	return f, ok
}

// Len is the number of mapped labels.
func (m FieldMapping) Len() int { return len(m.fields) }

// Map returns a copy of the mapping.
func (m FieldMapping) Map() map[string]string {
	out := make(map[string]string, len(m.fields))
	for k, v := range m.fields {
		out[k] = v
	}
	return out
}

// MappingFromItem matches custom field values of a sample item against
// the known labels.
func MappingFromItem(item map[string]any) FieldMapping {
	keys := make([]string, 0, len(item))
	for k := range item {
		if strings.HasPrefix(k, "customField") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	found := map[string]string{}
	for _, k := range keys {
		v, ok := item[k].(string)
		if !ok {
			continue
		}
		v = strings.ToLower(v)
		switch {
		case strings.Contains(v, "title") && strings.Contains(v, "short"):
			if _, dup := found[LabelTitleShort]; !dup {
				found[LabelTitleShort] = k
			}
		case strings.Contains(v, "meta") && strings.Contains(v, "title"):
			if _, dup := found[LabelMetaTitle]; !dup {
				found[LabelMetaTitle] = k
			}
		}
	}
	return NewFieldMapping(found)
}

// Discover inspects one sample item. It never fails: any error or an
// empty result yields the default mapping and a warning.
func Discover(ctx context.Context, client *Client, logger *zap.Logger) FieldMapping {
	sample, err := client.SearchItems(ctx, nil, 1)
	if err != nil {
		logger.Warn("Custom field discovery failed, using default mapping", zap.Error(err))
		return DefaultFieldMapping()
	}

	var mapping FieldMapping
	if len(sample) > 0 {
		mapping = MappingFromItem(sample[0])
	}
	if mapping.Len() == 0 {
		logger.Warn("No custom field mapping found, using default mapping")
		return DefaultFieldMapping()
	}

	logger.Info("Custom field mapping discovered", zap.Any("mapping", mapping.Map()))
	return mapping
}
