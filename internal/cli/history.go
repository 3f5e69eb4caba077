package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ListSlots writes the name of every save slot, one per line.
func (c Config) ListSlots(ctx context.Context, w io.Writer) error {
	store, closeFn, err := c.OpenStore()
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	slots, err := store.List(ctx)
	if err != nil {
		return err
	}
	for _, slot := range slots {
		fmt.Fprintln(w, slot)
	}
	return nil
}

// ShowSlot writes the records of a save slot as indented JSON.
func (c Config) ShowSlot(ctx context.Context, w io.Writer, slot string) error {
	store, closeFn, err := c.OpenStore()
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	h, err := store.Load(ctx, slot)
	if err != nil {
		return fmt.Errorf("failed to load slot %s: %w", slot, err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(h)
}

// DeleteSlots removes every slot in slots and reports all failures together.
func (c Config) DeleteSlots(ctx context.Context, slots []string) error {
	store, closeFn, err := c.OpenStore()
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	var errs []error
	for _, slot := range slots {
		if err := store.Delete(ctx, slot); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", slot, err))
		}
	}
	return errors.Join(errs...)
}
