package store

import (
	"encoding/json"
	"time"
)

func parseTimeRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

func unmarshalJSONList(s string, out *[]string) {
	json.Unmarshal([]byte(s), out)
}
