package tools

import (
	"encoding/json"
)

func FmtJSONString(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "marshal data fail"
	}
	return string(data)
}

// Indented variant used for reports printed to the console
func FmtJSONIndent(v interface{}) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "marshal data fail"
	}
	return string(data)
}
