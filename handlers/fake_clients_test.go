package handlers

import (
	"context"
	"fmt"
	"io"
	"time"

	"banhangso-backend/firebase"
)

// fakeAuth stands in for the identity provider. VerifyIDToken treats the
// token as the uid itself, so tests authenticate with
// "Authorization: Bearer <uid>".
type fakeAuth struct {
	CreateUserFn func(params firebase.CreateUserParams) (string, error)

	CreatedUsers []firebase.CreateUserParams
	CreatedUIDs  []string
	UpdatedUIDs  []string
	DeletedUIDs  []string
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{}
}

func (f *fakeAuth) VerifyIDToken(ctx context.Context, idToken string) (string, error) {
	if idToken == "" {
		return "", fmt.Errorf("empty token")
	}
	return idToken, nil
}

func (f *fakeAuth) CreateUser(ctx context.Context, params firebase.CreateUserParams) (string, error) {
	if f.CreateUserFn != nil {
		uid, err := f.CreateUserFn(params)
		if err != nil {
			return "", err
		}
		f.CreatedUsers = append(f.CreatedUsers, params)
		f.CreatedUIDs = append(f.CreatedUIDs, uid)
		return uid, nil
	}
	uid := fmt.Sprintf("fake-uid-%d", len(f.CreatedUIDs)+1)
	f.CreatedUsers = append(f.CreatedUsers, params)
	f.CreatedUIDs = append(f.CreatedUIDs, uid)
	return uid, nil
}

func (f *fakeAuth) UpdateUser(ctx context.Context, uid string, params firebase.UpdateUserParams) error {
	f.UpdatedUIDs = append(f.UpdatedUIDs, uid)
	return nil
}

func (f *fakeAuth) DeleteUser(ctx context.Context, uid string) error {
	f.DeletedUIDs = append(f.DeletedUIDs, uid)
	return nil
}

// fakeStorage records storage calls without touching any bucket.
type fakeStorage struct {
	UploadImageFn func(folder, filename, contentType string) (string, error)

	Uploads         []string
	MarkedPermanent []string
	Deleted         []string
	CleanupCalls    int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{}
}

func (f *fakeStorage) UploadImage(ctx context.Context, folder, filename, contentType string, r io.Reader) (string, error) {
	if f.UploadImageFn != nil {
		return f.UploadImageFn(folder, filename, contentType)
	}
	url := fmt.Sprintf("https://storage.googleapis.com/test-bucket/%s/%s", folder, filename)
	f.Uploads = append(f.Uploads, url)
	return url, nil
}

func (f *fakeStorage) MarkPermanent(ctx context.Context, imageURL string) error {
	f.MarkedPermanent = append(f.MarkedPermanent, imageURL)
	return nil
}

func (f *fakeStorage) DeleteByURL(ctx context.Context, imageURL string) error {
	f.Deleted = append(f.Deleted, imageURL)
	return nil
}

func (f *fakeStorage) CleanupTemporary(ctx context.Context, olderThan time.Duration) (int, error) {
	f.CleanupCalls++
	return 0, nil
}
