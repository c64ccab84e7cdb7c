package testutil

import (
	"net/http"

	"github.com/google/uuid"

	id "lodgeguard/pkg/domain"
	"lodgeguard/pkg/requestcontext"
)

// WithActor attaches actor to the request context, the way RequireActor does
// for authenticated requests.
func WithActor(req *http.Request, actor id.Actor) *http.Request {
	return req.WithContext(requestcontext.WithActor(req.Context(), actor))
}

// Student, Landlord, and Admin build actors of the matching role.
func Student(studentID id.StudentID) id.Actor {
	return id.Actor{ID: uuid.UUID(studentID), Role: id.RoleStudent}
}

func Landlord(landlordID id.LandlordID) id.Actor {
	return id.Actor{ID: uuid.UUID(landlordID), Role: id.RoleLandlord}
}

func Admin() id.Actor {
	return id.Actor{ID: uuid.New(), Role: id.RoleAdmin}
}

// ActorMiddleware injects a fixed actor into every request. It stands in for
// the token middleware in handler tests.
func ActorMiddleware(actor *id.Actor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, WithActor(r, *actor))
		})
	}
}
