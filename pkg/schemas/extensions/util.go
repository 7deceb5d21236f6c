package extensions

type (
	// JSON is the type for arbitrary JSON.
	JSON = interface{}
	// JSONObject is the type for JSON objects.
	JSONObject = map[string]interface{}
	// JSONArray is the type for JSON arrays.
	JSONArray = []interface{}
)
