package config

// This file defines the as-written YAML shape (spec.md §6), decoded with
// KnownFields(true) so unknown keys are rejected before normalize() ever
// runs. Field tags use yaml.v3 conventions.

type rawDocument struct {
	Options  rawOptions             `yaml:"options"`
	Projects []rawProject           `yaml:"projects"`
	Sizes    rawSizes               `yaml:"sizes"`
	Commit   rawCommit              `yaml:"commit"`
}

type rawOptions struct {
	PrevTag string     `yaml:"prev_tag"`
	Signing rawSigning `yaml:"signing"`
}

type rawSigning struct {
	Commits string `yaml:"commits"`
	Tags    string `yaml:"tags"`
	KeyPath string `yaml:"key_path"`
}

type rawCommit struct {
	Author  string `yaml:"author"`
	Email   string `yaml:"email"`
	Message string `yaml:"message"`
}

type rawSizes struct {
	UseAngular bool       `yaml:"use_angular"`
	Major      []string   `yaml:"major"`
	Minor      []string   `yaml:"minor"`
	Patch      []string   `yaml:"patch"`
	None       []string   `yaml:"none"`
	Fail       []string   `yaml:"fail"`
}

// Map returns the non-angular size buckets keyed by size name, skipping
// empties so buildSizeMap only iterates configured entries.
func (r rawSizes) Map() map[string][]string {
	m := map[string][]string{}
	if len(r.Major) > 0 {
		m["major"] = r.Major
	}
	if len(r.Minor) > 0 {
		m["minor"] = r.Minor
	}
	if len(r.Patch) > 0 {
		m["patch"] = r.Patch
	}
	if len(r.None) > 0 {
		m["none"] = r.None
	}
	if len(r.Fail) > 0 {
		m["fail"] = r.Fail
	}
	return m
}

type rawProject struct {
	Name               string                  `yaml:"name"`
	ID                 uint                    `yaml:"id"`
	Root               string                  `yaml:"root"`
	Includes           []string                `yaml:"includes"`
	Excludes           []string                `yaml:"excludes"`
	Depends            map[uint]rawDependency  `yaml:"depends"`
	Changelog          *rawChangelog           `yaml:"changelog"`
	Version            *rawVersion             `yaml:"version"`
	Also               []*rawVersion           `yaml:"also"`
	TagPrefix          string                  `yaml:"tag_prefix"`
	TagPrefixSeparator string                  `yaml:"tag_prefix_separator"`
	Subs               *rawSubs                `yaml:"subs"`
	Labels             rawLabels               `yaml:"labels"`
	Hooks              rawHooks                `yaml:"hooks"`
}

// LabelList normalizes the string-or-list `labels` field.
func (r rawProject) LabelList() []string {
	return r.Labels.List
}

// rawLabels accepts either a bare string or a list of strings.
type rawLabels struct {
	List []string
}

func (r *rawLabels) UnmarshalYAML(unmarshal func(any) error) error {
	var single string
	if err := unmarshal(&single); err == nil {
		if single != "" {
			r.List = []string{single}
		}
		return nil
	}
	var list []string
	if err := unmarshal(&list); err != nil {
		return err
	}
	r.List = list
	return nil
}

type rawHooks struct {
	PostWrite string `yaml:"post_write"`
}

type rawDependency struct {
	Size  string              `yaml:"size"`
	Files []rawDependencyFile `yaml:"files"`
}

type rawDependencyFile struct {
	File     string `yaml:"file"`
	Pattern  string `yaml:"pattern"`
	Template string `yaml:"template"`
}

// rawChangelog accepts either a bare string (the file path) or a
// {file, template} map.
type rawChangelog struct {
	File     string
	Template string
}

func (r *rawChangelog) UnmarshalYAML(unmarshal func(any) error) error {
	var file string
	if err := unmarshal(&file); err == nil {
		r.File = file
		return nil
	}
	var full struct {
		File     string `yaml:"file"`
		Template string `yaml:"template"`
	}
	if err := unmarshal(&full); err != nil {
		return err
	}
	r.File, r.Template = full.File, full.Template
	return nil
}

type rawSubs struct {
	Dirs string `yaml:"dirs"`
	Tops []int  `yaml:"tops"`
}

// rawVersion is the sum type for `version` and each `also` entry: a file
// location (one of json/yaml/toml/xml/pattern selectors), a tags scheme, or
// a get/set hook pair.
type rawVersion struct {
	File    string       `yaml:"file"`
	JSON    any          `yaml:"json"`
	YAML    any          `yaml:"yaml"`
	TOML    any          `yaml:"toml"`
	XML     any          `yaml:"xml"`
	Pattern string       `yaml:"pattern"`
	Tags    *rawTagsMode `yaml:"tags"`
	Get     string       `yaml:"get"`
	Set     string       `yaml:"set"`
}

type rawTagsMode struct {
	Default string `yaml:"default"`
}
