package handlers

import (
	"encoding/json"
	"fmt"

	"storefront/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// formValues reads a submitted form as flat field values. JSON bodies may
// nest one level, e.g. {"billingAddress": {"city": ...}} reads as
// "billingAddress.city".
func formValues(c *fiber.Ctx) (validation.FormValues, error) {
	values := make(validation.FormValues)

	if c.Is("json") {
		var body map[string]any
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return nil, err
		}
		flatten(values, "", body)
		return values, nil
	}

	if form, err := c.MultipartForm(); err == nil {
		for k, v := range form.Value {
			if len(v) > 0 {
				values[k] = v[0]
			}
		}
		return values, nil
	}

	c.Request().PostArgs().VisitAll(func(key, value []byte) {
		values[string(key)] = string(value)
	})
	return values, nil
}

func flatten(values validation.FormValues, prefix string, body map[string]any) {
	for k, v := range body {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case nil:
		case string:
			values[key] = val
		case bool:
			if val {
				values[key] = "on"
			}
		case map[string]any:
			if prefix == "" {
				flatten(values, key, val)
			}
		default:
			values[key] = fmt.Sprint(val)
		}
	}
}
