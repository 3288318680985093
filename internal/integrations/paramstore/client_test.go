package paramstore

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/require"

	"student-agent/internal/domain"
)

type fakeAPI struct {
	getOut *ssm.GetParameterOutput
	getErr error
	lastIn *ssm.GetParameterInput
}

func (f *fakeAPI) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.lastIn = in
	return f.getOut, f.getErr
}

type mapGetter map[string]string

func (m mapGetter) GetParameter(_ context.Context, name string) (string, error) {
	v, ok := m[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return v, nil
}

type failingGetter struct{ err error }

func (f failingGetter) GetParameter(context.Context, string) (string, error) { return "", f.err }

func strPtr(s string) *string { return &s }

func TestGetParameter_HappyPath(t *testing.T) {
	api := &fakeAPI{getOut: &ssm.GetParameterOutput{Parameter: &types.Parameter{
		Name: strPtr("p"), Value: strPtr(`{"k":"v"}`), Type: types.ParameterTypeSecureString,
	}}}
	client, err := New(api)
	require.NoError(t, err)
	v, err := client.GetParameter(context.Background(), " p ")
	require.NoError(t, err)
	require.Equal(t, `{"k":"v"}`, v)
	require.Equal(t, "p", *api.lastIn.Name)
	require.True(t, *api.lastIn.WithDecryption)
}

func TestGetParameter_Errors(t *testing.T) {
	client, err := New(&fakeAPI{getOut: &ssm.GetParameterOutput{Parameter: &types.Parameter{Name: strPtr("p")}}})
	require.NoError(t, err)
	_, err = client.GetParameter(context.Background(), "p")
	require.ErrorContains(t, err, "missing value")

	client, err = New(&fakeAPI{getErr: errors.New("boom")})
	require.NoError(t, err)
	_, err = client.GetParameter(context.Background(), "p")
	require.ErrorContains(t, err, "boom")
	require.NotErrorIs(t, err, ErrNotFound)

	client, err = New(&fakeAPI{getErr: &types.ParameterNotFound{}})
	require.NoError(t, err)
	_, err = client.GetParameter(context.Background(), "p")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = client.GetParameter(context.Background(), "  ")
	require.ErrorContains(t, err, "required")

	_, err = (&Client{}).GetParameter(context.Background(), "p")
	require.ErrorContains(t, err, "not initialized")
}

func TestNew_NilAPI(t *testing.T) {
	_, err := New(nil)
	require.ErrorContains(t, err, "must not be nil")
}

func TestLoadSettings_OverridesAndDefaults(t *testing.T) {
	src, err := NewSettingsSource(mapGetter{
		"/student-agent/config/assistant": `{"recentTopicWindow": 4, "cancelPhrases": ["Enough"]}`,
	}, "/student-agent/")
	require.NoError(t, err)

	got, err := src.LoadSettings(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, got.RecentTopicWindow)
	require.Equal(t, 50, got.TopicHistoryLimit)
	require.Equal(t, []string{"enough"}, got.CancelPhrases)
	require.Equal(t, domain.DefaultSettings().TriggerPhrases, got.TriggerPhrases)
}

func TestLoadSettings_MissingParameterUsesDefaults(t *testing.T) {
	src, err := NewSettingsSource(mapGetter{}, "/student-agent")
	require.NoError(t, err)

	got, err := src.LoadSettings(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.DefaultSettings(), got)
}

func TestLoadSettings_Errors(t *testing.T) {
	src, err := NewSettingsSource(failingGetter{err: errors.New("throttled")}, "/p")
	require.NoError(t, err)
	_, err = src.LoadSettings(context.Background())
	require.ErrorContains(t, err, "throttled")

	src, err = NewSettingsSource(mapGetter{"/p/config/assistant": "{"}, "/p")
	require.NoError(t, err)
	_, err = src.LoadSettings(context.Background())
	require.ErrorContains(t, err, "decode settings")

	_, err = NewSettingsSource(nil, "/p")
	require.Error(t, err)
	_, err = NewSettingsSource(mapGetter{}, " / ")
	require.Error(t, err)
}
