package firebase

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

var App *firebase.App

// ErrEmailExists is returned by CreateUser when the email is already
// registered with the identity provider.
var ErrEmailExists = errors.New("email already in use")

func Init() {
	credJSON := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")

	var opts []option.ClientOption

	if credJSON != "" {
		if strings.HasPrefix(credJSON, "{") {
			log.Println("Using Firebase credentials from environment variable")
			opts = append(opts, option.WithCredentialsJSON([]byte(credJSON)))
		} else {
			// It's a file path
			log.Println("Using Firebase credentials from file:", credJSON)
			opts = append(opts, option.WithCredentialsFile(credJSON))
		}
	} else {
		log.Println("Warning: GOOGLE_APPLICATION_CREDENTIALS not set, using default credentials")
	}

	app, err := firebase.NewApp(context.Background(), nil, opts...)
	if err != nil {
		log.Fatalf("Firebase init failed: %v", err)
	}

	App = app
	log.Println("Firebase initialized successfully")
}

// CreateUserParams carries the account attributes handed to the provider.
type CreateUserParams struct {
	Email       string
	Password    string
	DisplayName string
	PhotoURL    string
}

// UpdateUserParams updates provider-side account attributes. Nil fields are
// left unchanged.
type UpdateUserParams struct {
	DisplayName *string
	PhotoURL    *string
	Disabled    *bool
}

// AuthClient abstracts the identity provider so handlers can be tested
// without network access.
type AuthClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (string, error)
	CreateUser(ctx context.Context, params CreateUserParams) (string, error)
	UpdateUser(ctx context.Context, uid string, params UpdateUserParams) error
	DeleteUser(ctx context.Context, uid string) error
}

type firebaseAuthClient struct {
	client *auth.Client
}

// NewAuthClient returns an AuthClient backed by Firebase Auth. Init must have
// been called first.
func NewAuthClient() AuthClient {
	if App == nil {
		log.Fatal("firebase app not initialized")
	}
	client, err := App.Auth(context.Background())
	if err != nil {
		log.Fatalf("Firebase auth client init failed: %v", err)
	}
	return &firebaseAuthClient{client: client}
}

func (a *firebaseAuthClient) VerifyIDToken(ctx context.Context, idToken string) (string, error) {
	token, err := a.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", err
	}
	return token.UID, nil
}

func (a *firebaseAuthClient) CreateUser(ctx context.Context, params CreateUserParams) (string, error) {
	toCreate := (&auth.UserToCreate{}).
		Email(params.Email).
		Password(params.Password)
	if params.DisplayName != "" {
		toCreate = toCreate.DisplayName(params.DisplayName)
	}
	if params.PhotoURL != "" {
		toCreate = toCreate.PhotoURL(params.PhotoURL)
	}

	record, err := a.client.CreateUser(ctx, toCreate)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return "", ErrEmailExists
		}
		return "", err
	}
	return record.UID, nil
}

func (a *firebaseAuthClient) UpdateUser(ctx context.Context, uid string, params UpdateUserParams) error {
	toUpdate := &auth.UserToUpdate{}
	if params.DisplayName != nil {
		toUpdate = toUpdate.DisplayName(*params.DisplayName)
	}
	if params.PhotoURL != nil {
		toUpdate = toUpdate.PhotoURL(*params.PhotoURL)
	}
	if params.Disabled != nil {
		toUpdate = toUpdate.Disabled(*params.Disabled)
	}
	_, err := a.client.UpdateUser(ctx, uid, toUpdate)
	return err
}

func (a *firebaseAuthClient) DeleteUser(ctx context.Context, uid string) error {
	return a.client.DeleteUser(ctx, uid)
}
