package stackops

import (
	"context"
	"io"

	"patchstack.dev/patchstack/internal/stack"
	"patchstack.dev/patchstack/internal/txn"
)

// Rename renames a patch in place without touching its commit.
func Rename(ctx context.Context, s *stack.Stack, oldName, newName string, out io.Writer) error {
	t := txn.Transact(s, txn.Options{Output: out})
	if err := t.RenamePatch(oldName, newName); err != nil {
		return err
	}
	_, err := t.Execute(ctx, "rename "+oldName+" "+newName)
	return err
}
