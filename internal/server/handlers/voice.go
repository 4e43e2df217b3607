package handlers

import (
	"PortalServer/internal/entities"
	"PortalServer/internal/transcribe"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	maxClipBytes   = 25 << 20
	summaryRunes   = 140
	clipFormField  = "audio"
	defaultClipExt = "clip.webm"
)

func (h Handler) VoiceStart() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		pid, ok := patientID(ctx)
		if !ok {
			return
		}
		ctx.JSON(http.StatusOK, h.sessions.Start(pid))
	}
}

func (h Handler) VoiceStop() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		pid, ok := patientID(ctx)
		if !ok {
			return
		}
		sess, err := h.sessions.Stop(pid)
		if err != nil {
			respondError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, sess)
	}
}

func (h Handler) VoiceSession() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		pid, ok := patientID(ctx)
		if !ok {
			return
		}
		sess, err := h.sessions.Get(pid)
		if err != nil {
			respondError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, sess)
	}
}

// VoiceClip transcribes one recorded clip into the running transcript.
// A failed transcription is a 502 carrying the session, which now has
// its error flag set and recording stopped.
func (h Handler) VoiceClip() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		pid, ok := patientID(ctx)
		if !ok {
			return
		}

		clip, err := readClip(ctx)
		if err != nil {
			badRequest(ctx, err)
			return
		}

		sess, err := h.sessions.AddClip(ctx.Request.Context(), pid, clip)
		if err != nil {
			if !sessionError(err) {
				ctx.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
					"error":   sess.ErrorMessage,
					"session": sess,
				})
				return
			}
			respondError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, sess)
	}
}

// sessionError reports whether AddClip refused the clip rather than the
// transcription call failing.
func sessionError(err error) bool {
	return errors.Is(err, transcribe.ErrNoSession) ||
		errors.Is(err, transcribe.ErrNotRecording) ||
		errors.Is(err, transcribe.ErrBusy) ||
		errors.Is(err, transcribe.ErrSessionReplaced)
}

func readClip(ctx *gin.Context) (transcribe.Clip, error) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxClipBytes)
	header, err := ctx.FormFile(clipFormField)
	if err != nil {
		return transcribe.Clip{}, fmt.Errorf("form file %q: %w", clipFormField, err)
	}
	f, err := header.Open()
	if err != nil {
		return transcribe.Clip{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return transcribe.Clip{}, err
	}
	if len(data) == 0 {
		return transcribe.Clip{}, errors.New("audio clip is empty")
	}

	name := header.Filename
	if name == "" {
		name = defaultClipExt
	}
	return transcribe.Clip{
		Filename:    name,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// VoiceSubmit turns the finished transcript into a voice check-in.
func (h Handler) VoiceSubmit() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		pid, ok := patientID(ctx)
		if !ok {
			return
		}
		transcript, err := h.sessions.Submit(pid)
		if err != nil {
			respondError(ctx, err)
			return
		}
		h.submitCheckIn(ctx, pid, entities.CheckIn{
			Type:       entities.CheckInVoice,
			Summary:    transcribe.Summary(transcript, summaryRunes),
			Transcript: transcript,
		})
	}
}

func (h Handler) VoiceDiscard() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		pid, ok := patientID(ctx)
		if !ok {
			return
		}
		h.sessions.Discard(pid)
		ctx.Status(http.StatusNoContent)
	}
}
