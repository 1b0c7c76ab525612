package fetcher

import (
	"context"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
)

// StreamJSONArray decodes a top-level JSON array element by element. Both channels are
// closed when decoding stops; at most one error is sent.
func StreamJSONArray[T any](ctx context.Context, r io.Reader) (<-chan T, <-chan error) {
	outCh := make(chan T, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(outCh)
		defer close(errCh)

		dec := json.NewDecoder(r)
		tok, err := dec.Token()
		if err == io.EOF {
			return
		}
		if err != nil {
			errCh <- eris.Wrap(err, "json: read opening token")
			return
		}
		if delim, ok := tok.(json.Delim); !ok || delim != '[' {
			errCh <- eris.Errorf("json: expected '[', got %v", tok)
			return
		}

		for i := 0; dec.More(); i++ {
			var item T
			if err := dec.Decode(&item); err != nil {
				errCh <- eris.Wrapf(err, "json: decode element %d", i)
				return
			}
			select {
			case outCh <- item:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "json: context cancelled")
				return
			}
		}

		if _, err := dec.Token(); err != nil {
			errCh <- eris.Wrap(err, "json: read closing token")
		}
	}()

	return outCh, errCh
}

// ReadJSONArray collects every element of a top-level JSON array.
func ReadJSONArray[T any](ctx context.Context, r io.Reader) ([]T, error) {
	items, errs := StreamJSONArray[T](ctx, r)
	var out []T
	for item := range items {
		out = append(out, item)
	}
	if err := <-errs; err != nil {
		return nil, err
	}
	return out, nil
}
