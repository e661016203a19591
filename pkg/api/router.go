package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ashevelev/chatweb/pkg/api/handler"
	"github.com/ashevelev/chatweb/pkg/logger"
)

// NewRouter wires every HTTP endpoint. Handlers stay thin: they parse,
// delegate to a service and translate errors to statuses.
func NewRouter(
	authService handler.AuthService,
	conversationService handler.ConversationService,
	chatService handler.ChatService,
	uploadService handler.UploadService,
	balanceProvider handler.BalanceProvider,
) http.Handler {
	authHandler := handler.NewAuth(authService)
	conversationsHandler := handler.NewConversations(conversationService)
	chatHandler := handler.NewChat(chatService)
	uploadHandler := handler.NewUpload(uploadService)
	statusHandler := handler.NewStatus(balanceProvider)

	mux := http.NewServeMux()

	mux.HandleFunc("/auth/signup", authHandler.SignUp)
	mux.HandleFunc("/auth/signin", authHandler.SignIn)

	mux.HandleFunc("GET /conversations", conversationsHandler.List)
	mux.HandleFunc("POST /conversations", conversationsHandler.Save)
	mux.HandleFunc("GET /conversations/{id}", conversationsHandler.Get)
	mux.HandleFunc("PATCH /conversations/{id}", conversationsHandler.Patch)
	mux.HandleFunc("DELETE /conversations/{id}", conversationsHandler.Delete)
	mux.HandleFunc("GET /conversations/{id}/export", conversationsHandler.Export)

	mux.HandleFunc("POST /chat", chatHandler.Respond)
	mux.HandleFunc("POST /upload", uploadHandler.Upload)
	mux.HandleFunc("GET /status", statusHandler.Status)

	return withRequestID(mux)
}

// withRequestID tags every request with an id that the log handler
// prints on each record.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logger.ContextWithRequestID(r.Context(), uuid.NewString()[:8])
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
