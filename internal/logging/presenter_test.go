// Copyright (c) 2025 Modmeta
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	apperrors "modmeta/cli/internal/errors"
)

func TestClassifyFailure(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		offline bool
		want    FailureType
	}{
		{
			name: "fetch failure",
			err:  apperrors.Wrap(apperrors.FetchFailed, "fetch forge manifest", errors.New("server returned status 500")),
			want: FailureNetwork,
		},
		{
			name: "deadline",
			err:  apperrors.Wrap(apperrors.FetchFailed, "fetch minecraft manifest", context.DeadlineExceeded),
			want: FailureTimeout,
		},
		{
			name: "permission denied",
			err:  apperrors.Wrap(apperrors.IOFailed, "write primary", os.ErrPermission),
			want: FailureDisk,
		},
		{
			name: "corrupt cache",
			err:  apperrors.Wrap(apperrors.MetadataUnavailable, "no tier", apperrors.New(apperrors.DecodeFailed, "bad json")),
			want: FailureCorrupt,
		},
		{
			name:    "offline and nothing cached",
			err:     apperrors.Wrap(apperrors.MetadataUnavailable, "no tier", fmt.Errorf("read backup: %w", os.ErrNotExist)),
			offline: true,
			want:    FailureOffline,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyFailure(tt.err, tt.offline); got != tt.want {
				t.Errorf("ClassifyFailure() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatMetadataFailure_MasksDetails(t *testing.T) {
	err := apperrors.Wrap(apperrors.FetchFailed, "fetch quilt manifest",
		errors.New(`Get "https://u:p@meta.example.com/quilt/v0/manifest.json": EOF`))

	out := FormatMetadataFailure(err, false)
	if strings.Contains(out, "u:p@") {
		t.Errorf("FormatMetadataFailure() leaked credentials: %s", out)
	}
	if !strings.Contains(out, "meta refresh") {
		t.Errorf("FormatMetadataFailure() missing refresh hint: %s", out)
	}
}

func TestPresentError(t *testing.T) {
	if got := PresentError("refresh", nil); got != "" {
		t.Errorf("PresentError(nil) = %q, want empty", got)
	}
	got := PresentError("refresh", errors.New("token=abc"))
	if got != "refresh: token=***" {
		t.Errorf("PresentError() = %q, want %q", got, "refresh: token=***")
	}
}
