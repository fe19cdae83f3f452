package codegen

import (
	"fmt"
	"strconv"

	"github.com/matthewbaird/chaincodegen/internal/schema"
)

// SampleValue returns a Go literal for field f in the index-th (1-based)
// sample record. The result depends only on the field and the index.
func SampleValue(f schema.Field, index int) string {
	switch f.Type {
	case schema.TypeString:
		switch {
		case schema.IsKeyField(f):
			return fmt.Sprintf(`"asset%d"`, index)
		case schema.IsOwnerField(f):
			return fmt.Sprintf(`"User%d"`, index)
		default:
			return fmt.Sprintf(`"Sample %s %d"`, f.Name, index)
		}
	case schema.TypeInteger:
		return strconv.Itoa(index * 100)
	case schema.TypeFloat:
		return strconv.FormatFloat(float64(index)*10.5, 'f', -1, 64)
	case schema.TypeBoolean:
		return strconv.FormatBool(index%2 == 0)
	case schema.TypeStringList:
		return fmt.Sprintf(`[]string{"item%d-1", "item%d-2"}`, index, index)
	case schema.TypeStringMap:
		return fmt.Sprintf(`map[string]string{"key%d": "value%d"}`, index, index)
	default:
		return fmt.Sprintf(`"%s%d"`, f.Name, index)
	}
}
