package annexb

import (
	"io"
	"testing"

	"github.com/golang/mock/gomock"
)

// TestReadAllRestoresOriginalPositionViaMock drives ReadAll against a
// MockSource instead of a real file/buffer, verifying it seeks back to the
// position it started at without depending on bytes.Reader's own
// bookkeeping.
func TestReadAllRestoresOriginalPositionViaMock(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	data := []byte{0xAA, 0xBB, 0xCC}
	src := NewMockSource(ctrl)

	src.EXPECT().Tell().Return(int64(7), nil)

	read := 0
	src.EXPECT().Read(gomock.Any()).DoAndReturn(func(p []byte) (int, error) {
		if read >= len(data) {
			return 0, io.EOF
		}
		n := copy(p, data[read:])
		read += n
		return n, nil
	}).AnyTimes()

	src.EXPECT().Seek(int64(7), io.SeekStart).Return(int64(7), nil)

	got, err := ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != string(data) {
		t.Fatalf("ReadAll returned %v, want %v", got, data)
	}
}

// TestReadAllPropagatesTellError confirms a failing Tell short-circuits
// before any Read/Seek call is attempted.
func TestReadAllPropagatesTellError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	src := NewMockSource(ctrl)
	src.EXPECT().Tell().Return(int64(0), errBoom)

	if _, err := ReadAll(src); err != errBoom {
		t.Fatalf("expected errBoom, got %v", err)
	}
}

var errBoom = io.ErrClosedPipe
