package portfolio

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/portfolio/chat"
	"github.com/eringen/portfolio/inbox"
	"github.com/eringen/portfolio/mail"
	"github.com/eringen/portfolio/photos"
)

type apiError struct {
	Error string `json:"error"`
}

func jsonError(c echo.Context, status int, msg string) error {
	return c.JSON(status, apiError{Error: msg})
}

func tooManyRequests(c echo.Context) error {
	return jsonError(c, http.StatusTooManyRequests, "Too many requests. Please try again later.")
}

// handleContact stores the submission in the inbox, then relays it over SMTP.
func (a *App) handleContact(c echo.Context) error {
	if !a.contactLimiter.Allow(c.RealIP()) {
		return tooManyRequests(c)
	}
	var msg mail.Contact
	if err := c.Bind(&msg); err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid request body.")
	}
	if err := msg.Validate(); err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}

	id, err := a.Inbox.Save(inbox.Message{Name: msg.Name, Email: msg.Email, Body: msg.Message})
	if err != nil {
		a.Log.Error().Err(err).Msg("store contact message")
		return jsonError(c, http.StatusInternalServerError, "Failed to send message.")
	}
	if a.mailer == nil {
		a.Log.Warn().Int64("id", id).Msg("smtp not configured; contact message kept in inbox only")
		return c.JSON(http.StatusOK, map[string]bool{"success": true})
	}
	if err := a.mailer.Send(c.Request().Context(), msg); err != nil {
		a.Log.Error().Err(err).Int64("id", id).Msg("send contact message")
		if mErr := a.Inbox.MarkFailed(id, err.Error()); mErr != nil {
			a.Log.Warn().Err(mErr).Int64("id", id).Msg("mark message failed")
		}
		return jsonError(c, http.StatusInternalServerError, "Failed to send message.")
	}
	if err := a.Inbox.MarkSent(id); err != nil {
		a.Log.Warn().Err(err).Int64("id", id).Msg("mark message sent")
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

type chatRequest struct {
	Messages []chat.Message `json:"messages"`
}

type chatResponse struct {
	Answer string `json:"answer"`
}

// handleChat proxies the widget's conversation to the named provider.
func (a *App) handleChat(name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !a.chatLimiter.Allow(c.RealIP()) {
			return tooManyRequests(c)
		}
		var req chatRequest
		if err := c.Bind(&req); err != nil {
			return jsonError(c, http.StatusBadRequest, "Invalid request body.")
		}
		history, err := chat.Normalize(req.Messages)
		if err != nil {
			return jsonError(c, http.StatusBadRequest, err.Error())
		}
		provider, ok := a.chat[name]
		if !ok {
			return jsonError(c, http.StatusServiceUnavailable, "Chat is not configured.")
		}
		answer, err := provider.Complete(c.Request().Context(), chat.SystemContext(a.Config.chatProfile()), history)
		if err != nil {
			a.Log.Error().Err(err).Str("provider", provider.Name()).Msg("chat completion failed")
			return jsonError(c, http.StatusBadGateway, "The assistant is unavailable right now.")
		}
		return c.JSON(http.StatusOK, chatResponse{Answer: answer})
	}
}

func (a *App) handlePhotoList(c echo.Context) error {
	raw, err := a.Photos.Raw()
	if err != nil {
		a.Log.Error().Err(err).Msg("read photos")
		return jsonError(c, http.StatusInternalServerError, "Failed to read photos.")
	}
	return c.JSON(http.StatusOK, raw)
}

// handlePhotoAppend requires a session cookie; the API is not public.
func (a *App) handlePhotoAppend(c echo.Context) error {
	if !HasSession(c) {
		return jsonError(c, http.StatusUnauthorized, "Unauthorized")
	}
	var p photos.Photo
	if err := c.Bind(&p); err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid request body.")
	}
	saved, err := a.Photos.Append(p)
	if errors.Is(err, photos.ErrInvalidPhoto) {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}
	if err != nil {
		a.Log.Error().Err(err).Msg("append photo")
		return jsonError(c, http.StatusInternalServerError, "Failed to save photo.")
	}
	return c.JSON(http.StatusCreated, saved)
}
