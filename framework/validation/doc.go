// Package validation checks flat string maps, such as the environment a
// config is loaded from, against pipe-separated rule strings.
//
// # Basic Usage
//
//	v := validation.Make(map[string]string{
//	    "APP_ENV":  "production",
//	    "APP_PORT": "8000",
//	}, validation.Rules{
//	    "APP_ENV":  "required|in:local,production,testing",
//	    "APP_PORT": "required|integer|between:1,65535",
//	})
//
//	if err := v.Validate(); err != nil {
//	    // err is *Errors, Bag holds the messages per field
//	}
//
// # Available Rules
//
//   - required        field must be present and non-empty
//   - sometimes       skips the remaining rules when the field is empty
//   - integer         parseable as int
//   - numeric         parseable as float64
//   - boolean         accepted by strconv.ParseBool
//   - min:n, max:n    bound on the value for numeric fields, on the length otherwise
//   - between:lo,hi   both bounds, inclusive
//   - in:a,b,c        value must be in the list
//   - not_in:a,b,c    value must not be in the list
//   - alpha_dash      letters, numbers, dashes and underscores
//   - regex:pattern   must match the pattern
//
// Rules for a field run in order and stop at the first failure.
package validation
