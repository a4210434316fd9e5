package settlement

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	isLib "github.com/matryer/is"

	"github.com/fkhayef/splitsmart/internal/database/databasetest"
	"github.com/fkhayef/splitsmart/internal/group"
	"github.com/fkhayef/splitsmart/internal/ledger"
	"github.com/fkhayef/splitsmart/internal/metrics"
	"github.com/fkhayef/splitsmart/internal/notification"
	"github.com/fkhayef/splitsmart/internal/user"
	"github.com/fkhayef/splitsmart/pkg/logging"
)

// newTestService returns a service and a group where b@x owes a@x 40.00 and
// c@x owes a@x 40.00.
func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	ctx := context.Background()

	db := databasetest.New(t)
	logger := logging.Discard()
	m := metrics.New()

	users := user.NewRepository(db)
	userSvc := user.NewService(users, logger)
	for _, e := range []string{"a@x", "b@x", "c@x", "z@x"} {
		if _, err := userSvc.Create(ctx, &user.CreateUserRequest{Name: strings.ToUpper(e[:1]), Email: e}); err != nil {
			t.Fatal(err)
		}
	}

	groups := group.NewService(db, group.NewRepository(db), users, group.NewLocks(), m, logger, "₹")
	g, err := groups.Create(ctx, &group.CreateGroupRequest{Name: "Flat", Members: []string{"a@x", "b@x", "c@x"}})
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = groups.Mutate(ctx, g.ID, func(_ *sql.Tx, _ *group.Group, l *ledger.Ledger) error {
		if err := l.SettleUp("a@x", "b@x", 4000); err != nil {
			return err
		}
		return l.SettleUp("a@x", "c@x", 4000)
	})
	if err != nil {
		t.Fatal(err)
	}

	notifier := notification.NewService(notification.NewLogPublisher(logger), logger, "₹")
	return NewService(groups, notifier, m, logger), g.ID
}

func TestSettleUp(t *testing.T) {
	tests := []struct {
		name string
		req  SettleUpRequest
		want []ledger.Debt
	}{
		{
			name: "partial",
			req:  SettleUpRequest{Payer: "B@x", Receiver: "a@x", Amount: 1500},
			want: []ledger.Debt{{Debtor: "b@x", Creditor: "a@x", Amount: 2500}, {Debtor: "c@x", Creditor: "a@x", Amount: 4000}},
		},
		{
			name: "full",
			req:  SettleUpRequest{Payer: "b@x", Receiver: "a@x", Amount: 4000},
			want: []ledger.Debt{{Debtor: "c@x", Creditor: "a@x", Amount: 4000}},
		},
		{
			name: "creditor pays debtor",
			req:  SettleUpRequest{Payer: "a@x", Receiver: "b@x", Amount: 1000},
			want: []ledger.Debt{{Debtor: "b@x", Creditor: "a@x", Amount: 5000}, {Debtor: "c@x", Creditor: "a@x", Amount: 4000}},
		},
		{
			name: "between two debtors",
			req:  SettleUpRequest{Payer: "b@x", Receiver: "c@x", Amount: 1000},
			want: []ledger.Debt{{Debtor: "b@x", Creditor: "a@x", Amount: 3000}, {Debtor: "c@x", Creditor: "a@x", Amount: 5000}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := isLib.New(t)
			svc, groupID := newTestService(t)

			tt.req.GroupID = groupID
			s, l, err := svc.SettleUp(context.Background(), &tt.req)
			is.NoErr(err)
			is.Equal(s.Payer, strings.ToLower(tt.req.Payer))
			is.Equal(l.Debts(), tt.want)
		})
	}
}

func TestSettleUpRejects(t *testing.T) {
	svc, groupID := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  SettleUpRequest
		want error
	}{
		{"zero amount", SettleUpRequest{GroupID: groupID, Payer: "b@x", Receiver: "a@x"}, ledger.ErrNonPositiveSettlement},
		{"outsider", SettleUpRequest{GroupID: groupID, Payer: "z@x", Receiver: "a@x", Amount: 100}, group.ErrNotMember},
		{"unknown group", SettleUpRequest{GroupID: "nope", Payer: "b@x", Receiver: "a@x", Amount: 100}, group.ErrGroupNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := svc.SettleUp(ctx, &tt.req); !errors.Is(err, tt.want) {
				t.Errorf("SettleUp() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNetBalances(t *testing.T) {
	is := isLib.New(t)
	svc, groupID := newTestService(t)

	balances, err := svc.NetBalances(context.Background(), groupID, "A@X")
	is.NoErr(err)
	is.Equal(len(balances), 2)
	is.Equal(balances[0].Email, "b@x")
	is.Equal(int64(balances[0].Amount), int64(-4000))
	is.Equal(balances[0].ToResponse("₹").Message, "B owes you ₹40.00")

	balances, err = svc.NetBalances(context.Background(), groupID, "c@x")
	is.NoErr(err)
	is.Equal(balances[0].ToResponse("₹").Message, "You owe A ₹40.00")
}

func TestHandler(t *testing.T) {
	svc, groupID := newTestService(t)
	router := NewHandler(svc, "₹").Routes()

	tests := []struct {
		method, path, body string
		status             int
		want               string
	}{
		{http.MethodPost, "/", `{"group_id":"` + groupID + `","payer":"b@x","receiver":"a@x","amount":"40"}`, http.StatusCreated, `"debts":[{"debtor":"c@x","creditor":"a@x","amount":40.00}]`},
		{http.MethodPost, "/", `{"group_id":"` + groupID + `","payer":"b@x","receiver":"a@x","amount":-1}`, http.StatusUnprocessableEntity, `settlement amount must be positive`},
		{http.MethodPost, "/", `{`, http.StatusBadRequest, `BAD_REQUEST`},
		{http.MethodGet, "/group/" + groupID + "/balances/c@x", "", http.StatusOK, `You owe A ₹40.00`},
		{http.MethodGet, "/group/" + groupID + "/balances/z@x", "", http.StatusUnprocessableEntity, `not a member`},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))
		if rec.Code != tt.status {
			t.Errorf("%s %s: status = %d, want %d (%s)", tt.method, tt.path, rec.Code, tt.status, rec.Body.String())
			continue
		}
		if !strings.Contains(rec.Body.String(), tt.want) {
			t.Errorf("%s %s: body %s does not contain %s", tt.method, tt.path, rec.Body.String(), tt.want)
		}
	}
}
