package api

import (
	"net/url"
	"strconv"
)

// Armado del query string: los valores cero no se envían.

func setStr(q url.Values, key, v string) {
	if v != "" {
		q.Set(key, v)
	}
}

func setInt(q url.Values, key string, v int64) {
	if v != 0 {
		q.Set(key, strconv.FormatInt(v, 10))
	}
}

func setBool(q url.Values, key string, v bool) {
	if v {
		q.Set(key, "true")
	}
}

func idPath(base string, id int64) string {
	return base + "/" + strconv.FormatInt(id, 10)
}
