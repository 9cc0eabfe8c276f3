package dataset

import (
	"os"

	mdp "github.com/ajoshpratt/MolDynPlot"
)

//Loader reads the table of a dataset from the source its specification names.
type Loader interface {
	Load(S *Spec) (*mdp.Table, error)
}

//FileLoader reads text tables from the file in the infile parameter, with environment
//variables expanded. The read_csv_kw mapping can set the delimiter, comment and
//index_col used. Containers with addresses (the address parameter) are not supported.
type FileLoader struct{}

//ReadOptions returns the table reading options set in the read_csv_kw parameter of S.
func ReadOptions(S *Spec) (*mdp.ReadOptions, error) {
	O := mdp.DefaultReadOptions()
	kw, err := S.Map("read_csv_kw")
	if err != nil {
		return nil, mdp.ErrDecorate(err, "ReadOptions")
	}
	for k, v := range kw {
		switch k {
		case "delimiter", "sep":
			s, ok := v.(string)
			if !ok {
				return nil, mdp.NewError(mdp.InvalidArgumentError, "ReadOptions", "delimiter must be a string")
			}
			if s == " " {
				s = mdp.Whitespace
			}
			O.Delimiter(s)
		case "delim_whitespace":
			if b, ok := v.(bool); ok && b {
				O.Delimiter(mdp.Whitespace)
			}
		case "comment":
			s, ok := v.(string)
			if !ok {
				return nil, mdp.NewError(mdp.InvalidArgumentError, "ReadOptions", "comment must be a string")
			}
			O.Comment(s)
		case "index_col":
			f, ok := toFloat(v)
			if !ok || f < 0 {
				return nil, mdp.NewError(mdp.InvalidArgumentError, "ReadOptions", "index_col must be a non-negative integer")
			}
			O.IndexCol(int(f))
		default:
			return nil, mdp.NewError(mdp.ConfigurationError, "ReadOptions", "read_csv_kw option %s not understood", k)
		}
	}
	return O, nil
}

//Load reads the table for S.
func (FileLoader) Load(S *Spec) (*mdp.Table, error) {
	if S.Has("address") {
		return nil, mdp.NewError(mdp.ConfigurationError, "FileLoader.Load", "addresses inside containers need a loader that supports them")
	}
	infile, err := S.Str("infile", "")
	if err != nil {
		return nil, mdp.ErrDecorate(err, "FileLoader.Load")
	}
	if infile == "" {
		return nil, mdp.NewError(mdp.ConfigurationError, "FileLoader.Load", "no infile given")
	}
	O, err := ReadOptions(S)
	if err != nil {
		return nil, mdp.ErrDecorate(err, "FileLoader.Load")
	}
	T, err := mdp.TableFileRead(os.ExpandEnv(infile), O)
	return T, mdp.ErrDecorate(err, "FileLoader.Load")
}
