package e2e

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cucumber/godog"
)

// RegisterSteps registers all step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Background
	ctx.Step(`^the kiosk is running$`, tc.kioskIsRunning)

	// Voting session
	ctx.Step(`^I start a voting session$`, tc.startSession)
	ctx.Step(`^I enter voter id "([^"]*)"$`, tc.enterVoterID)
	ctx.Step(`^I submit a face capture "([^"]*)"$`, tc.submitFace)
	ctx.Step(`^the scanner reads the fingerprint of voter (\d+)$`, tc.scannerReads)
	ctx.Step(`^the scanner reads an unknown fingerprint$`, tc.scannerRejects)
	ctx.Step(`^I scan my fingerprint$`, tc.scanFingerprint)
	ctx.Step(`^I proceed to the ballot$`, tc.proceed)
	ctx.Step(`^I go back$`, tc.back)
	ctx.Step(`^I select candidate (\d+)$`, tc.selectCandidate)
	ctx.Step(`^I cast my vote$`, tc.castVote)
	ctx.Step(`^I view the session$`, tc.viewSession)
	ctx.Step(`^I end the session$`, tc.endSession)

	// Registration
	ctx.Step(`^I capture a registration face "([^"]*)"$`, tc.captureRegistrationFace)
	ctx.Step(`^I register voter "([^"]*)" named "([^"]*)" with the captured face and no fingerprint$`, tc.registerWithFace)

	// Admin
	ctx.Step(`^the admin client is at "([^"]*)"$`, tc.clientAt)
	ctx.Step(`^I log in as admin with password "([^"]*)"$`, tc.adminLogin)
	ctx.Step(`^I log in as admin with password "([^"]*)" (\d+) times$`, tc.adminLoginTimes)
	ctx.Step(`^I save the admin token$`, tc.saveAdminToken)
	ctx.Step(`^I request the admin dashboard$`, tc.dashboard)
	ctx.Step(`^I add candidate "([^"]*)"$`, tc.addCandidate)

	// Assertions
	ctx.Step(`^the response status should be (\d+)$`, tc.responseStatusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, tc.responseFieldShouldEqual)
	ctx.Step(`^the response field "([^"]*)" should contain "([^"]*)"$`, tc.responseFieldShouldContain)
	ctx.Step(`^the response field "([^"]*)" should be present$`, tc.responseFieldShouldBePresent)
	ctx.Step(`^the session phase should be "([^"]*)"$`, tc.phaseShouldBe)
}

func (tc *TestContext) kioskIsRunning(ctx context.Context) error {
	if err := tc.GET("/health/live", nil); err != nil {
		return err
	}
	return tc.responseStatusShouldBe(ctx, 200)
}

func (tc *TestContext) startSession(ctx context.Context) error {
	if err := tc.POST("/sessions/", nil); err != nil {
		return err
	}
	if err := tc.responseStatusShouldBe(ctx, 201); err != nil {
		return err
	}
	id, err := tc.GetResponseField("id")
	if err != nil {
		return err
	}
	tc.SessionID = fmt.Sprint(id)
	return nil
}

func (tc *TestContext) sessionPath(suffix string) string {
	return "/sessions/" + tc.SessionID + suffix
}

func (tc *TestContext) enterVoterID(ctx context.Context, voterID string) error {
	return tc.POST(tc.sessionPath("/authenticate"), map[string]string{"voter_id": voterID})
}

func (tc *TestContext) submitFace(ctx context.Context, frame string) error {
	return tc.POSTRaw(tc.sessionPath("/face"), "image/jpeg", []byte(frame))
}

// godog binds (\d+) captures to int, so ids arrive signed.
func ledgerID(name string, v int) (uint64, error) {
	if v < 0 {
		return 0, fmt.Errorf("%s %d out of range", name, v)
	}
	return uint64(v), nil
}

func (tc *TestContext) scannerReads(ctx context.Context, voterID int) error {
	if tc.Scanner == nil {
		return godog.ErrSkip
	}
	id, err := ledgerID("voter id", voterID)
	if err != nil {
		return err
	}
	tc.Scanner.Present(id)
	return nil
}

func (tc *TestContext) scannerRejects(ctx context.Context) error {
	if tc.Scanner == nil {
		return godog.ErrSkip
	}
	tc.Scanner.Reject()
	return nil
}

func (tc *TestContext) scanFingerprint(ctx context.Context) error {
	return tc.POST(tc.sessionPath("/fingerprint"), nil)
}

func (tc *TestContext) proceed(ctx context.Context) error {
	return tc.POST(tc.sessionPath("/proceed"), nil)
}

func (tc *TestContext) back(ctx context.Context) error {
	return tc.POST(tc.sessionPath("/back"), nil)
}

func (tc *TestContext) selectCandidate(ctx context.Context, candidateID int) error {
	id, err := ledgerID("candidate id", candidateID)
	if err != nil {
		return err
	}
	return tc.POST(tc.sessionPath("/selection"), map[string]uint64{"candidate_id": id})
}

func (tc *TestContext) castVote(ctx context.Context) error {
	return tc.POST(tc.sessionPath("/vote"), nil)
}

func (tc *TestContext) viewSession(ctx context.Context) error {
	return tc.GET(tc.sessionPath(""), nil)
}

func (tc *TestContext) endSession(ctx context.Context) error {
	return tc.DELETE(tc.sessionPath(""), nil)
}

func (tc *TestContext) captureRegistrationFace(ctx context.Context, frame string) error {
	if err := tc.POSTRaw("/registration/face", "image/jpeg", []byte(frame)); err != nil {
		return err
	}
	if err := tc.responseStatusShouldBe(ctx, 200); err != nil {
		return err
	}
	encoding, err := tc.GetResponseField("encoding")
	if err != nil {
		return err
	}
	tc.FaceEncoding = fmt.Sprint(encoding)
	return nil
}

func (tc *TestContext) registerWithFace(ctx context.Context, voterID, name string) error {
	if tc.FaceEncoding == "" {
		return errors.New("no face captured in this scenario")
	}
	return tc.POST("/registration", map[string]any{
		"name":            name,
		"voter_id":        voterID,
		"face_encoding":   tc.FaceEncoding,
		"finger_disabled": true,
	})
}

func (tc *TestContext) adminLogin(ctx context.Context, password string) error {
	return tc.POST("/admin/login", map[string]string{"password": password})
}

// clientAt only works in process, where loopback is a trusted proxy.
func (tc *TestContext) clientAt(ctx context.Context, ip string) error {
	if tc.Scanner == nil {
		return godog.ErrSkip
	}
	tc.ForwardedFor = ip
	return nil
}

func (tc *TestContext) adminLoginTimes(ctx context.Context, password string, n int) error {
	for range n {
		if err := tc.adminLogin(ctx, password); err != nil {
			return err
		}
	}
	return nil
}

func (tc *TestContext) saveAdminToken(ctx context.Context) error {
	token, err := tc.GetResponseField("access_token")
	if err != nil {
		return err
	}
	tc.AdminToken = fmt.Sprint(token)
	return nil
}

func (tc *TestContext) dashboard(ctx context.Context) error {
	return tc.GET("/admin/dashboard", tc.adminHeaders())
}

func (tc *TestContext) addCandidate(ctx context.Context, name string) error {
	return tc.AdminPOST("/admin/candidates", map[string]string{"name": name})
}

func (tc *TestContext) responseStatusShouldBe(ctx context.Context, expected int) error {
	if actual := tc.GetLastResponseStatus(); actual != expected {
		return fmt.Errorf("expected status %d but got %d\nResponse: %s", expected, actual, tc.LastResponseBody)
	}
	return nil
}

func (tc *TestContext) responseFieldShouldEqual(ctx context.Context, field, expected string) error {
	actual, err := tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if formatField(actual) != expected {
		return fmt.Errorf("field %s: expected %s but got %v", field, expected, actual)
	}
	return nil
}

func (tc *TestContext) responseFieldShouldContain(ctx context.Context, field, substring string) error {
	actual, err := tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if !strings.Contains(formatField(actual), substring) {
		return fmt.Errorf("field %s: expected to contain %s but got %v", field, substring, actual)
	}
	return nil
}

func (tc *TestContext) responseFieldShouldBePresent(ctx context.Context, field string) error {
	_, err := tc.GetResponseField(field)
	return err
}

func (tc *TestContext) phaseShouldBe(ctx context.Context, phase string) error {
	if err := tc.viewSession(ctx); err != nil {
		return err
	}
	return tc.responseFieldShouldEqual(ctx, "phase", phase)
}

// formatField prints JSON numbers without a trailing ".0".
func formatField(v any) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}
