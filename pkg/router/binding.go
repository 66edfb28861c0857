package router

import (
	"encoding/json"
	"io"
	"net/http"
	"reflect"
	"strconv"

	"github.com/VAIOT/lottery-backend/pkg/errorx"
)

func bindJSON(r *http.Request, req any) error {
	b, err := io.ReadAll(r.Body)
	if err != nil {
		return errorx.New(errorx.BadRequest, "Cannot read the request body")
	}

	if err := json.Unmarshal(b, req); err != nil {
		return errorx.New(errorx.BadRequest, "Cannot parse the request body")
	}

	return nil
}

// bindQuery fills string and int fields of req from the url query, matched by
// json tag.
func bindQuery(r *http.Request, req any) error {
	v := reflect.ValueOf(req).Elem()
	for i := 0; i < v.NumField(); i++ {
		name := v.Type().Field(i).Tag.Get("json")
		queryVal := r.URL.Query().Get(name)
		if queryVal == "" {
			continue
		}

		switch v.Field(i).Kind() {
		case reflect.String:
			v.Field(i).SetString(queryVal)

		case reflect.Int, reflect.Int64:
			val, err := strconv.ParseInt(queryVal, 10, 64)
			if err != nil {
				return errorx.New(errorx.BadRequest, "Invalid value %s of %s", queryVal, name)
			}
			v.Field(i).SetInt(val)
		}
	}

	return nil
}
