package access

import (
	"context"
	"testing"

	"edman-service/internal/domain/catalog"
	"edman-service/internal/domain/lead"
	"edman-service/internal/domain/user"
	"edman-service/internal/repository/memory"
)

func TestResolve(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	tx, _ := store.BeginTx(ctx)
	center := &catalog.Center{Name: "Main", UserID: "center-user"}
	if err := store.Centers().CreateWithTx(ctx, tx, center); err != nil {
		t.Fatal(err)
	}
	tx.Commit(ctx)

	svc := NewService(store.Centers())

	tests := []struct {
		name       string
		principal  *user.Principal
		wantLeads  lead.ListFilter
		wantCourse catalog.CourseFilter
		wantEmpty  bool
	}{
		{
			name:       "anonymous",
			wantCourse: catalog.CourseFilter{ActiveOnly: true},
		},
		{
			name:       "admin",
			principal:  &user.Principal{ID: "a", Role: user.RoleAdmin},
			wantCourse: catalog.CourseFilter{},
		},
		{
			name:       "agent",
			principal:  &user.Principal{ID: "g", Role: user.RoleAgent},
			wantLeads:  lead.ListFilter{AgentID: "g"},
			wantCourse: catalog.CourseFilter{ActiveOnly: true},
		},
		{
			name:       "center",
			principal:  &user.Principal{ID: "center-user", Role: user.RoleCenter},
			wantLeads:  lead.ListFilter{CenterID: center.ID},
			wantCourse: catalog.CourseFilter{CenterID: center.ID},
		},
		{
			name:      "center without row",
			principal: &user.Principal{ID: "orphan", Role: user.RoleCenter},
			wantEmpty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scope, err := svc.Resolve(ctx, tt.principal)
			if err != nil {
				t.Fatal(err)
			}
			if scope.Empty != tt.wantEmpty {
				t.Fatalf("Empty = %v, want %v", scope.Empty, tt.wantEmpty)
			}
			if tt.wantEmpty {
				return
			}
			if got := scope.LeadFilter(); got != tt.wantLeads {
				t.Errorf("LeadFilter = %+v, want %+v", got, tt.wantLeads)
			}
			if got := scope.CourseFilter(); got != tt.wantCourse {
				t.Errorf("CourseFilter = %+v, want %+v", got, tt.wantCourse)
			}
		})
	}
}

func TestCanSeeLead(t *testing.T) {
	l := &lead.Lead{AgentID: "g1", CenterID: "c1"}

	tests := []struct {
		scope Scope
		want  bool
	}{
		{Scope{Role: user.RoleAdmin}, true},
		{Scope{Role: user.RoleAgent, AgentID: "g1"}, true},
		{Scope{Role: user.RoleAgent, AgentID: "g2"}, false},
		{Scope{Role: user.RoleCenter, CenterID: "c1"}, true},
		{Scope{Role: user.RoleCenter, CenterID: "c2"}, false},
		{Scope{Role: user.RoleCenter, Empty: true}, false},
		{Scope{}, false},
	}
	for _, tt := range tests {
		if got := tt.scope.CanSeeLead(l); got != tt.want {
			t.Errorf("%+v.CanSeeLead = %v, want %v", tt.scope, got, tt.want)
		}
	}
}
