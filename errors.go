package main

import "errors"

var (
	// ErrNameTaken signals a case-insensitive collision with an active
	// player's name anywhere in the world.
	ErrNameTaken = errors.New("name already taken")

	// ErrSpellOnCooldown is returned when a spell is cast before its
	// previous cooldown elapsed. The cooldown timer is not reset.
	ErrSpellOnCooldown = errors.New("spell on cooldown")

	// ErrNoTarget is returned by targeted spells when no visible player
	// is in the room to receive the effect.
	ErrNoTarget = errors.New("no target in range")

	// ErrMessageRejected is returned when chat moderation refuses a
	// message. The message is never written to the shared store.
	ErrMessageRejected = errors.New("message rejected by moderation")

	// ErrNotJoined is returned by operations that require a live session.
	ErrNotJoined = errors.New("session has not joined a room")
)
