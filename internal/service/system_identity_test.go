package service_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"alertdesk.app/intake/internal/model"
	"alertdesk.app/intake/internal/service"
)

var _ = Describe("SystemIdentity", func() {
	ctx := context.Background()

	It("returns the existing system user", func() {
		users := &mockUserStore{
			getByEmailFn: func(_ context.Context, email string) (*model.User, error) {
				Expect(email).To(Equal("system@alertdesk.local"))
				return &model.User{ID: 7}, nil
			},
			upsertSystemUserFn: func(context.Context, *model.User) (*model.User, error) {
				Fail("should not upsert an existing user")
				return nil, nil
			},
		}

		userID, err := service.NewSystemIdentity(users, "system@alertdesk.local", "System").GetOrCreateSystemUser(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(userID).To(Equal(int64(7)))
	})

	It("creates the system user when missing", func() {
		var created *model.User
		users := &mockUserStore{
			upsertSystemUserFn: func(_ context.Context, u *model.User) (*model.User, error) {
				created = u
				return u, nil
			},
		}

		userID, err := service.NewSystemIdentity(users, "system@alertdesk.local", "System").GetOrCreateSystemUser(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(created.IsSystem).To(BeTrue())
		Expect(created.Name).To(Equal("System"))
		Expect(userID).To(Equal(created.ID))
	})

	It("does not mask lookup failures", func() {
		users := &mockUserStore{
			getByEmailFn: func(context.Context, string) (*model.User, error) {
				return nil, errors.New("pool closed")
			},
		}

		_, err := service.NewSystemIdentity(users, "system@alertdesk.local", "System").GetOrCreateSystemUser(ctx)
		Expect(err).To(MatchError(ContainSubstring("pool closed")))
	})
})
