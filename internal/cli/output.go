package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/itchyny/gojq"
)

// printResult writes v as indented JSON. When --query is set the jq expression is applied first and each result is printed on its own.
func (a *app) printResult(w io.Writer, v any) error {
	if a.query == "" {
		return writeJSON(w, v)
	}

	results, err := applyQuery(a.query, v)
	if err != nil {
		return err
	}
	for _, r := range results {
		if err := writeJSON(w, r); err != nil {
			return err
		}
	}
	return nil
}

// applyQuery runs a jq expression over v.
// v is converted to plain JSON values first since gojq only understands maps, slices and scalars.
func applyQuery(expression string, v any) ([]any, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("failed to parse jq expression: %s, error: %w", expression, err)
	}

	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq expression: %s, error: %w", expression, err)
	}

	input, err := toJSONValue(v)
	if err != nil {
		return nil, err
	}

	var results []any
	iter := code.Run(input)
	for {
		result, ok := iter.Next()
		if !ok {
			break
		}
		if errVal, isErr := result.(error); isErr {
			return nil, fmt.Errorf("jq evaluation error: %w", errVal)
		}
		results = append(results, result)
	}
	return results, nil
}

func toJSONValue(v any) (any, error) {
	dat, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("could not encode output: %w", err)
	}
	var out any
	if err := json.Unmarshal(dat, &out); err != nil {
		return nil, fmt.Errorf("could not encode output: %w", err)
	}
	return out, nil
}

func writeJSON(w io.Writer, v any) error {
	// plain strings print without quotes, like jq -r
	if s, ok := v.(string); ok {
		_, err := fmt.Fprintln(w, s)
		return err
	}

	dat, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(dat))
	return err
}
