package value

// idFieldNames are the conventional field names an embedded ID sub-struct
// is declared under; Blender's own source uses lowercase "id" almost
// everywhere but a handful of historical structs spell it "ID".
var idFieldNames = []string{"id", "ID"}

// IDName returns the decoded name of a struct value's embedded ID
// sub-struct, if it has one (§3 "ID block"). The returned string still
// carries its two-letter type prefix, e.g. "OBCube".
func IDName(v Value) (string, bool) {
	if v.Kind != KindStruct {
		return "", false
	}
	for _, fn := range idFieldNames {
		idVal, ok := v.Fields[fn]
		if !ok || idVal.Kind != KindStruct {
			continue
		}
		name, ok := idVal.Field("name")
		if !ok || name.Kind != KindString {
			continue
		}
		return name.String(), true
	}
	return "", false
}

// IsIDRoot reports whether v decodes an ID-root block.
func IsIDRoot(v Value) bool {
	_, ok := IDName(v)
	return ok
}

// IDTypePrefix returns the two-letter type prefix of an ID name, e.g.
// "OB" from "OBCube".
func IDTypePrefix(name string) string {
	if len(name) < 2 {
		return name
	}
	return name[:2]
}
