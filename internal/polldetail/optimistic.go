package polldetail

import "context"

// Run applies a speculative local change, performs request and undoes the
// change with rollback when the request fails. When apply returns an error
// nothing else runs.
func Run(ctx context.Context, apply func() error, request func(context.Context) error, rollback func(error)) error {
	if err := apply(); err != nil {
		return err
	}
	if err := request(ctx); err != nil {
		if rollback != nil {
			rollback(err)
		}
		return err
	}
	return nil
}
