package story

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/roach88/novella/internal/vars"
)

// document is the on-disk shape shared by JSON, YAML and exported CUE.
type document struct {
	Title      string   `json:"title" yaml:"title"`
	TextSpeed  int      `json:"textSpeed" yaml:"textSpeed"`
	StartScene string   `json:"startScene" yaml:"startScene"`
	Scenes     sceneSet `json:"scenes" yaml:"scenes"`
}

type rawScene struct {
	Background string     `json:"background" yaml:"background"`
	Events     []rawEvent `json:"events" yaml:"events"`
}

type rawEvent struct {
	Type              string          `json:"type" yaml:"type"`
	SE                string          `json:"se" yaml:"se"`
	SetVar            *SetVar         `json:"setVar" yaml:"setVar"`
	Condition         *vars.Condition `json:"condition" yaml:"condition"`
	Character         string          `json:"character" yaml:"character"`
	Text              string          `json:"text" yaml:"text"`
	Message           string          `json:"message" yaml:"message"`
	NextSceneID       string          `json:"nextSceneId" yaml:"nextSceneId"`
	CharacterImage    *string         `json:"characterImage" yaml:"characterImage"`
	CharImage         *string         `json:"charImage" yaml:"charImage"`
	CharacterPosition string          `json:"characterPosition" yaml:"characterPosition"`
	CharPosition      string          `json:"charPosition" yaml:"charPosition"`
	Options           []rawOption     `json:"options" yaml:"options"`
}

// An explicit null image hides the character, the same as "". Both decoders
// leave a pointer nil for null, so nulls are recovered from the raw object.

var emptyImage = ""

func (re *rawEvent) UnmarshalJSON(data []byte) error {
	type plain rawEvent
	if err := json.Unmarshal(data, (*plain)(re)); err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	for key, val := range fields {
		if string(bytes.TrimSpace(val)) == "null" {
			re.markNullImage(key)
		}
	}
	return nil
}

func (re *rawEvent) UnmarshalYAML(node *yaml.Node) error {
	type plain rawEvent
	if err := node.Decode((*plain)(re)); err != nil {
		return err
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i+1].ShortTag() == "!!null" {
			re.markNullImage(node.Content[i].Value)
		}
	}
	return nil
}

func (re *rawEvent) markNullImage(key string) {
	switch key {
	case "characterImage":
		re.CharacterImage = &emptyImage
	case "charImage":
		re.CharImage = &emptyImage
	}
}

type rawOption struct {
	Text        string          `json:"text" yaml:"text"`
	NextSceneID string          `json:"nextSceneId" yaml:"nextSceneId"`
	Condition   *vars.Condition `json:"condition" yaml:"condition"`
	SetVar      *SetVar         `json:"setVar" yaml:"setVar"`
}

// sceneSet decodes the scenes object while keeping key order.
type sceneSet struct {
	ids    []string
	scenes []rawScene
}

func (s *sceneSet) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("scenes must be an object")
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		id, _ := keyTok.(string)
		var sc rawScene
		if err := dec.Decode(&sc); err != nil {
			return fmt.Errorf("scene %q: %w", id, err)
		}
		s.ids = append(s.ids, id)
		s.scenes = append(s.scenes, sc)
	}
	_, err = dec.Token() // closing '}'
	return err
}

func (s *sceneSet) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: scenes must be a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		id := node.Content[i].Value
		var sc rawScene
		if err := node.Content[i+1].Decode(&sc); err != nil {
			return fmt.Errorf("scene %q: %w", id, err)
		}
		s.ids = append(s.ids, id)
		s.scenes = append(s.scenes, sc)
	}
	return nil
}

// UnmarshalJSON accepts the value as a JSON string, number or boolean.
func (sv *SetVar) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name  string          `json:"name"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	sv.Name = raw.Name
	sv.Value = vars.Str("")
	if len(raw.Value) == 0 {
		return nil
	}
	v, err := vars.DecodeJSON(raw.Value)
	if err != nil {
		return fmt.Errorf("setVar %q: %w", raw.Name, err)
	}
	if v != nil {
		sv.Value = v
	}
	return nil
}

// UnmarshalYAML keeps numeric scalars numeric.
func (sv *SetVar) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: setVar must be a mapping", node.Line)
	}
	sv.Value = vars.Str("")
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i].Value, node.Content[i+1]
		switch key {
		case "name":
			sv.Name = val.Value
		case "value":
			v, err := vars.DecodeYAML(val)
			if err != nil {
				return fmt.Errorf("setVar: %w", err)
			}
			if v != nil {
				sv.Value = v
			}
		}
	}
	return nil
}

// build converts the decoded document into a Story.
func (d *document) build() (*Story, error) {
	st := &Story{
		Title:      d.Title,
		TextSpeed:  d.TextSpeed,
		StartScene: d.StartScene,
	}
	if d.TextSpeed < 0 {
		return nil, fmt.Errorf("textSpeed must not be negative")
	}
	for i, id := range d.Scenes.ids {
		sc, err := buildScene(id, d.Scenes.scenes[i])
		if err != nil {
			return nil, err
		}
		if err := st.Scenes.Add(sc); err != nil {
			return nil, err
		}
	}
	return st, nil
}

func buildScene(id string, raw rawScene) (*Scene, error) {
	sc := &Scene{
		ID:         id,
		Background: raw.Background,
		Events:     make([]Event, 0, len(raw.Events)),
	}
	for i, re := range raw.Events {
		ev, err := buildEvent(re)
		if err != nil {
			return nil, fmt.Errorf("scene %q event %d: %w", id, i, err)
		}
		sc.Events = append(sc.Events, ev)
	}
	return sc, nil
}

func buildEvent(re rawEvent) (Event, error) {
	common := Common{SE: re.SE, SetVar: re.SetVar, Condition: re.Condition}

	switch Kind(re.Type) {
	case KindDialogue:
		posName := re.CharacterPosition
		if posName == "" {
			posName = re.CharPosition
		}
		pos, err := ParsePosition(posName)
		if err != nil {
			return nil, err
		}
		var img *string
		switch {
		case re.CharacterImage != nil:
			v := *re.CharacterImage
			img = &v
		case re.CharImage != nil:
			v := *re.CharImage
			img = &v
		}
		return &Dialogue{
			Common:            common,
			Character:         re.Character,
			Text:              re.Text,
			NextSceneID:       re.NextSceneID,
			CharacterImage:    img,
			CharacterPosition: pos,
		}, nil

	case KindSystem:
		return &System{Common: common}, nil

	case KindChoice:
		if len(re.Options) == 0 {
			return nil, fmt.Errorf("choice event has no options")
		}
		opts := make([]Option, len(re.Options))
		for i, ro := range re.Options {
			opts[i] = Option{
				Text:        ro.Text,
				NextSceneID: ro.NextSceneID,
				Condition:   ro.Condition,
				SetVar:      ro.SetVar,
			}
		}
		return &Choice{Common: common, Options: opts}, nil

	case KindEnd:
		msg := re.Message
		if msg == "" {
			msg = re.Text
		}
		return &End{Common: common, Message: msg}, nil

	case "":
		return nil, fmt.Errorf("event type is required")
	default:
		return nil, fmt.Errorf("unknown event type %q", re.Type)
	}
}
