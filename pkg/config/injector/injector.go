package injector

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"

	"github.com/raywall/fast-fetch-toolkit/pkg/awsutil"
)

// Regex para capturar padrões ${tipo.chave}
// Ex: ${env.API_KEY}, ${ssm./app/config}, ${secret.db_pass}
var pattern = regexp.MustCompile(`\$\{(env|ssm|secret)\.([^}]+)\}`)

// ResolverFunc resolve a chave de uma fonte (env, ssm, secret).
type ResolverFunc func(ctx context.Context, key string) (string, error)

type Injector struct {
	resolvers map[string]ResolverFunc
}

// New cria um Injector com as fontes reais (ambiente, SSM e Secrets Manager).
// Os clients da AWS só são criados quando um placeholder do tipo aparece.
func New() *Injector {
	region := os.Getenv("AWS_REGION")
	return &Injector{
		resolvers: map[string]ResolverFunc{
			"env": func(ctx context.Context, key string) (string, error) {
				return os.Getenv(key), nil
			},
			"ssm": func(ctx context.Context, key string) (string, error) {
				client, err := awsutil.NewSSMClient(ctx, region)
				if err != nil {
					return "", err
				}
				return awsutil.GetParameter(ctx, client, key)
			},
			"secret": func(ctx context.Context, key string) (string, error) {
				client, err := awsutil.NewSecretsClient(ctx, region)
				if err != nil {
					return "", err
				}
				// ${secret.id#campo} lê um campo do segredo JSON
				id, field, _ := strings.Cut(key, "#")
				return awsutil.GetSecret(ctx, client, id, field)
			},
		},
	}
}

// WithResolver substitui a fonte informada (usado em testes).
func (i *Injector) WithResolver(source string, fn ResolverFunc) *Injector {
	i.resolvers[source] = fn
	return i
}

func (i *Injector) Inject(ctx context.Context, target interface{}) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("target deve ser um ponteiro para struct não nulo")
	}
	return i.injectRecursive(ctx, v.Elem())
}

func (i *Injector) injectRecursive(ctx context.Context, v reflect.Value) error {
	switch v.Kind() {
	case reflect.Struct:
		for k := 0; k < v.NumField(); k++ {
			if err := i.injectRecursive(ctx, v.Field(k)); err != nil {
				return err
			}
		}

	case reflect.String:
		if !v.CanSet() {
			return nil
		}
		newValue, err := i.interpolateString(ctx, v.String())
		if err != nil {
			return err
		}
		v.SetString(newValue)

	case reflect.Map:
		if v.Type().Key().Kind() == reflect.String && !v.IsNil() {
			return i.injectMap(ctx, v)
		}

	case reflect.Ptr:
		if !v.IsNil() {
			return i.injectRecursive(ctx, v.Elem())
		}

	case reflect.Slice:
		for j := 0; j < v.Len(); j++ {
			if err := i.injectRecursive(ctx, v.Index(j)); err != nil {
				return err
			}
		}
	}
	return nil
}

// interpolateString realiza a substituição baseada em Regex
func (i *Injector) interpolateString(ctx context.Context, input string) (string, error) {
	if !strings.Contains(input, "${") {
		return input, nil
	}

	var err error
	result := pattern.ReplaceAllStringFunc(input, func(match string) string {
		if err != nil {
			return match
		}
		sub := pattern.FindStringSubmatch(match)
		resolver, ok := i.resolvers[sub[1]]
		if !ok {
			return match
		}

		val, resolveErr := resolver(ctx, sub[2])
		if resolveErr != nil {
			err = fmt.Errorf("falha ao resolver %s: %w", match, resolveErr)
			return match
		}
		return val
	})

	return result, err
}

// injectMap lida com mapas cujos valores não são endereçáveis (map[string]string,
// map[string]interface{} e structs como valor).
func (i *Injector) injectMap(ctx context.Context, v reflect.Value) error {
	iter := v.MapRange()
	updates := make(map[string]reflect.Value)

	for iter.Next() {
		key := iter.Key()
		val := iter.Value()

		elem := val
		if val.Kind() == reflect.Interface {
			elem = val.Elem()
		}
		if !elem.IsValid() {
			continue
		}

		switch elem.Kind() {
		case reflect.String:
			newVal, err := i.interpolateString(ctx, elem.String())
			if err != nil {
				return err
			}
			updates[key.String()] = reflect.ValueOf(newVal).Convert(elem.Type())
		case reflect.Map:
			if err := i.injectRecursive(ctx, elem); err != nil {
				return err
			}
		case reflect.Struct:
			cp := reflect.New(elem.Type()).Elem()
			cp.Set(elem)
			if err := i.injectRecursive(ctx, cp); err != nil {
				return err
			}
			updates[key.String()] = cp
		}
	}

	for k, val := range updates {
		v.SetMapIndex(reflect.ValueOf(k).Convert(v.Type().Key()), val)
	}
	return nil
}
