package ranges

// File is the layout of the candidate ranges YAML file.
//
//	ranges:
//	  - "tap_content!A:G"
//	  - "Sheet1!A:G"
type File struct {
	Ranges []string `yaml:"ranges"`
}
