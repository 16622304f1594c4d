package web

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"lessons/internal/application/orchestrators"
)

// contactRequest is the JSON body of POST /api/contact.
type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type contactResponse struct {
	ID       string `json:"id"`
	Notified bool   `json:"notified"`
}

func contactDeps() orchestrators.SubmitContactDeps {
	return orchestrators.SubmitContactDeps{
		ContactStore: stores.ContactStore,
		Sender:       emailSender,
		Inbox:        contactInbox,
		GenerateID:   uuid.NewString,
		Now:          time.Now,
	}
}

// handleContactForm renders the classic form; ?sent=1 shows the confirmation.
func handleContactForm(w http.ResponseWriter, r *http.Request) {
	sent := r.URL.Query().Get("sent") == "1"
	renderPage(w, r, http.StatusOK, "server_action.html", lessonFor("06-server-action", "Server-side forms"), sent)
}

// handleContactSubmit accepts the classic form post.
func handleContactSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	_, err := orchestrators.ExecuteSubmitContact(r.Context(), orchestrators.SubmitContactInput{
		Name:    r.PostFormValue("name"),
		Email:   r.PostFormValue("email"),
		Message: r.PostFormValue("message"),
	}, contactDeps())
	if err != nil {
		internalError(w, err)
		return
	}
	http.Redirect(w, r, "/06-server-action?sent=1", http.StatusSeeOther)
}

// handleContactAlt renders the JavaScript variant of the form.
func handleContactAlt(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, http.StatusOK, "server_action_alt.html", lessonFor("06-server-action", "Server-side forms"), nil)
}

// handleContactAPI accepts the JSON variant of the form.
func handleContactAPI(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := strictDecode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	res, err := orchestrators.ExecuteSubmitContact(r.Context(), orchestrators.SubmitContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	}, contactDeps())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, contactResponse{ID: res.SubmissionID, Notified: res.Notified})
}
