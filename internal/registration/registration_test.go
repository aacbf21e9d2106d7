package registration

import (
	"context"
	"errors"
	"testing"

	"contesthub/internal/model"
	"contesthub/internal/testutil"
	pkgerrors "contesthub/pkg/errors"
)

type fakeAPI struct {
	taken     map[string]bool
	existsErr error
	result    model.AddAdminResult
	addErr    error
	added     []model.AdminRegistration
}

func (f *fakeAPI) UsernameExists(ctx context.Context, username string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.taken[username], nil
}

func (f *fakeAPI) AddAdmin(ctx context.Context, req model.AdminRegistration) (model.AddAdminResult, error) {
	f.added = append(f.added, req)
	return f.result, f.addErr
}

func validForm() Form {
	return Form{
		Username:        "carol",
		Email:           "carol@example.com",
		PinCode:         "4321",
		Password:        "hunter2",
		ConfirmPassword: "hunter2",
	}
}

func TestValidateRequiredFields(t *testing.T) {
	r := NewRegistrar(&fakeAPI{})
	errs := r.Validate(Form{})
	testutil.AssertEqual(t, errs, FieldErrors{
		"username":        "Username is required",
		"email":           "Email is required",
		"pinCode":         "Pin code is required",
		"password":        "Password is required",
		"confirmPassword": "Confirm password is required",
	})
}

func TestValidateMismatchAndEmail(t *testing.T) {
	r := NewRegistrar(&fakeAPI{})

	form := validForm()
	form.ConfirmPassword = ""
	testutil.AssertEqual(t, r.Validate(form), FieldErrors{"confirmPassword": "Passwords do not match"})

	form = validForm()
	form.ConfirmPassword = "other"
	form.Email = "not-an-email"
	testutil.AssertEqual(t, r.Validate(form), FieldErrors{
		"confirmPassword": "Passwords do not match",
		"email":           "Invalid email format",
	})

	testutil.AssertEqual(t, r.Validate(validForm()), FieldErrors{})
}

func TestRegisterSuccessDropsConfirmation(t *testing.T) {
	api := &fakeAPI{result: model.AddAdminResult{Success: true}}
	errs := NewRegistrar(api).Register(context.Background(), validForm())
	testutil.AssertEqual(t, len(errs), 0)
	testutil.AssertEqual(t, api.added, []model.AdminRegistration{{
		Username: "carol",
		Password: "hunter2",
		Email:    "carol@example.com",
		PinCode:  "4321",
	}})
}

func TestRegisterUsernameTaken(t *testing.T) {
	api := &fakeAPI{taken: map[string]bool{"carol": true}}
	errs := NewRegistrar(api).Register(context.Background(), validForm())
	testutil.AssertEqual(t, errs, FieldErrors{"username": "Username already exists"})
	testutil.AssertEqual(t, len(api.added), 0)
}

func TestRegisterPreCheckFailureIsSkipped(t *testing.T) {
	api := &fakeAPI{existsErr: errors.New("boom"), result: model.AddAdminResult{Success: true}}
	errs := NewRegistrar(api).Register(context.Background(), validForm())
	testutil.AssertEqual(t, len(errs), 0)
	testutil.AssertEqual(t, len(api.added), 1)
}

func TestRegisterFormLevelErrors(t *testing.T) {
	rejected := pkgerrors.New(pkgerrors.ServerRejected).
		WithDetail("status", 500).
		WithDetail("statusText", "Internal Server Error").
		WithDetail("message", "")
	rejectedWithText := pkgerrors.New(pkgerrors.ServerRejected).
		WithDetail("statusText", "Bad Request").
		WithDetail("message", "pin code mismatch")

	tests := []struct {
		name string
		api  *fakeAPI
		want string
	}{
		{"server says no", &fakeAPI{result: model.AddAdminResult{Error: "quota exceeded"}}, "quota exceeded"},
		{"server says no without text", &fakeAPI{}, "An error occurred during registration"},
		{"non-2xx with message", &fakeAPI{addErr: rejectedWithText}, "Registration failed: pin code mismatch"},
		{"non-2xx without message", &fakeAPI{addErr: rejected}, "Registration failed: Internal Server Error"},
		{"no response", &fakeAPI{addErr: pkgerrors.New(pkgerrors.TransportFailed)}, "No response received from the server. Please try again later."},
		{"setup failure", &fakeAPI{addErr: pkgerrors.New(pkgerrors.RequestBuildFailed)}, "An error occurred during registration. Please try again."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := NewRegistrar(tt.api).Register(context.Background(), validForm())
			testutil.AssertEqual(t, errs, FieldErrors{FormKey: tt.want})
		})
	}
}

func TestRegisterSkipsPreCheckForEmptyUsername(t *testing.T) {
	api := &fakeAPI{existsErr: errors.New("must not be called")}
	form := validForm()
	form.Username = ""
	errs := NewRegistrar(api).Register(context.Background(), form)
	testutil.AssertEqual(t, errs, FieldErrors{"username": "Username is required"})
}
