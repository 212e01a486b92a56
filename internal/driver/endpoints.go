package driver

// PCM describes one direction of a sound card PCM device as the kernel
// reports it.
type PCM struct {
	Name        string   `json:"pcm" example:"hw:0,0" doc:"ALSA device string"`
	Card        int      `json:"card" example:"0" doc:"Sound card index"`
	CardID      string   `json:"card_id" example:"PCH" doc:"Card identifier"`
	CardName    string   `json:"card_name" example:"HDA Intel PCH" doc:"Full card name"`
	Device      int      `json:"device" example:"0" doc:"Device index on card"`
	DeviceName  string   `json:"device_name" example:"ALC892 Analog" doc:"Device name"`
	Stream      string   `json:"stream" example:"playback" doc:"playback or capture"`
	Rates       []int    `json:"rates" doc:"Supported sample rates in Hz"`
	MinChannels int      `json:"min_channels" example:"1" doc:"Minimum number of channels"`
	MaxChannels int      `json:"max_channels" example:"2" doc:"Maximum number of channels"`
	Formats     []string `json:"formats" doc:"Supported sample formats"`
}
