// Copyright (c) 2025 Modmeta
// Licensed under the MIT License. See LICENSE file in the project root for details.

package errors

import (
	stderrors "errors"
	"fmt"
	"os"
	"testing"
)

func TestError(t *testing.T) {
	tests := []struct {
		name string
		err  *E
		want string
	}{
		{
			name: "without cause",
			err:  New(MetadataUnavailable, "no metadata"),
			want: "metadata_unavailable: no metadata",
		},
		{
			name: "with cause",
			err:  Wrap(IOFailed, "write primary", os.ErrPermission),
			want: "io_failed: write primary: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKindOfAndIs(t *testing.T) {
	inner := Wrap(IOFailed, "read backup", os.ErrNotExist)
	outer := Wrap(BootstrapFailed, "load metadata", fmt.Errorf("tier 3: %w", inner))

	if got := KindOf(outer); got != BootstrapFailed {
		t.Errorf("KindOf() = %v, want %v", got, BootstrapFailed)
	}
	if !Is(outer, IOFailed) {
		t.Errorf("Is(outer, IOFailed) = false, want true")
	}
	if Is(outer, DecodeFailed) {
		t.Errorf("Is(outer, DecodeFailed) = true, want false")
	}
	if !stderrors.Is(outer, os.ErrNotExist) {
		t.Errorf("errors.Is(outer, os.ErrNotExist) = false, want true")
	}
	if got := KindOf(os.ErrClosed); got != "" {
		t.Errorf("KindOf(plain) = %q, want empty", got)
	}
}

func TestIs_SearchesJoinedCauses(t *testing.T) {
	err := Wrap(MetadataUnavailable, "no metadata", stderrors.Join(
		Wrap(IOFailed, "read primary", os.ErrNotExist),
		Wrap(FetchFailed, "fetch forge manifest", nil),
		Wrap(IOFailed, "read backup", os.ErrNotExist),
	))

	if !Is(err, FetchFailed) {
		t.Errorf("Is(err, FetchFailed) = false, want true")
	}
	if Is(err, DecodeFailed) {
		t.Errorf("Is(err, DecodeFailed) = true, want false")
	}
}
