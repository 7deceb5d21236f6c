package schemas

// MergeMaps fills obj with the keys of src that obj does not set. Nested objects present in both
// are merged recursively; any other value in obj, including arrays, wins over src. Neither input
// is modified and the result shares no maps or slices with them.
//
// This is the merge used for document inheritance, where obj is the child document and src is
// its parent:
//
//	merged := schemas.MergeMaps(child, parent)
func MergeMaps(obj, src JSONObject) JSONObject {
	out := Copy(obj)
	if out == nil {
		out = JSONObject{}
	}
	for key, srcVal := range src {
		objVal, ok := out[key]
		if !ok {
			out[key] = Copy(srcVal)
			continue
		}
		objMap, objIsMap := objVal.(JSONObject)
		srcMap, srcIsMap := srcVal.(JSONObject)
		if objIsMap && srcIsMap {
			out[key] = MergeMaps(objMap, srcMap)
		}
	}
	return out
}
