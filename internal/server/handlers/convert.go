package handlers

import (
	"github.com/maruel/jokedb/internal/server/dto"
	"github.com/maruel/jokedb/internal/storage/entity"
)

func jokeToDTO(j *entity.Joke) dto.Joke {
	return dto.Joke{
		ID:        j.ID,
		Type:      j.Type,
		Setup:     j.Setup,
		Punchline: j.Punchline,
	}
}

func jokesToDTO(jokes []entity.Joke) dto.JokeList {
	out := make(dto.JokeList, len(jokes))
	for i := range jokes {
		out[i] = jokeToDTO(&jokes[i])
	}
	return out
}
